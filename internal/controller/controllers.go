package controller

import (
	"github.com/krakosik/symposium/internal/client"
	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// uploadBodyLimit leaves room for multipart framing around the largest file.
const uploadBodyLimit = "101M"

type Controllers interface {
	Info() InfoController
	Vote() VoteController
	Submission() SubmissionController
	Upload() UploadController
	Admin() AdminController
	User() UserController

	Route(e *echo.Echo)
}

type controllers struct {
	infoController       InfoController
	voteController       VoteController
	submissionController SubmissionController
	uploadController     UploadController
	adminController      AdminController
	userController       UserController

	authService service.AuthService
	gatherer    prometheus.Gatherer
	uploadDir   string
}

func NewControllers(services service.Services, config dto.Config, gatherer prometheus.Gatherer) Controllers {
	c := &controllers{
		infoController:       newInfoController(services.Stats()),
		voteController:       newVoteController(services.Vote()),
		submissionController: newSubmissionController(services.Submission()),
		uploadController:     newUploadController(services.Upload()),
		adminController:      newAdminController(services.Auth(), services.Stats()),
		userController:       newUserController(services.User()),
		authService:          services.Auth(),
		gatherer:             gatherer,
	}
	if config.UploadBackend == dto.UploadBackendLocal {
		c.uploadDir = config.UploadDir
	}
	return c
}

// NewEcho returns an echo instance with the error handler and the common
// middleware installed.
func NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	return e
}

func (c controllers) Info() InfoController {
	return c.infoController
}

func (c controllers) Vote() VoteController {
	return c.voteController
}

func (c controllers) Submission() SubmissionController {
	return c.submissionController
}

func (c controllers) Upload() UploadController {
	return c.uploadController
}

func (c controllers) Admin() AdminController {
	return c.adminController
}

func (c controllers) User() UserController {
	return c.userController
}

func (c controllers) Route(e *echo.Echo) {
	e.GET("/", c.infoController.Info)
	e.GET("/healthz", c.infoController.Health)
	if c.gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})))
	}

	e.POST("/vote", c.voteController.Cast)
	e.POST("/votes-remaining", c.voteController.Remaining)
	e.GET("/submissions", c.submissionController.List)
	e.POST("/submissions", c.submissionController.Create)
	e.GET("/leaderboard", c.submissionController.Leaderboard)
	e.POST("/upload", c.uploadController.Upload, middleware.BodyLimit(uploadBodyLimit))
	if c.uploadDir != "" {
		e.Static(client.UploadURLPrefix, c.uploadDir)
	}

	e.POST("/admin/login", c.adminController.Login)

	admin := e.Group("/admin", AdminAuth(c.authService))
	admin.GET("/verify", c.adminController.Verify)
	admin.GET("/stats", c.adminController.Stats)

	admin.GET("/submissions", c.submissionController.List)
	admin.POST("/submissions", c.submissionController.AdminCreate)
	admin.PUT("/submissions/:id", c.submissionController.Update)
	admin.DELETE("/submissions/:id", c.submissionController.Delete)

	admin.GET("/users", c.userController.List)
	admin.PUT("/users/:id", c.userController.Update)
	admin.PUT("/users/:id/toggle-admin", c.userController.ToggleAdmin)
	admin.DELETE("/users/:id", c.userController.Delete)

	admin.GET("/votes", c.voteController.List)
	admin.DELETE("/votes", c.voteController.Clear)
	admin.GET("/votes/stats", c.voteController.Stats)
	admin.DELETE("/votes/:id", c.voteController.Delete)
}
