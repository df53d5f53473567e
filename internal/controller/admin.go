package controller

import (
	"net/http"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/service"
	"github.com/labstack/echo/v4"
)

type AdminController interface {
	Login(c echo.Context) error
	Verify(c echo.Context) error
	Stats(c echo.Context) error
}

type adminController struct {
	authService  service.AuthService
	statsService service.StatsService
}

func newAdminController(authService service.AuthService, statsService service.StatsService) AdminController {
	return &adminController{
		authService:  authService,
		statsService: statsService,
	}
}

func (a *adminController) Login(c echo.Context) error {
	var request dto.LoginRequest
	if err := bind(c, &request); err != nil {
		return err
	}

	token, admin, err := a.authService.Login(c.Request().Context(), request.Email, request.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.LoginResponse{
		Token: token,
		User:  dto.NewUserView(admin),
	})
}

func (a *adminController) Verify(c echo.Context) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.VerifyResponse{
		Valid: true,
		User:  dto.NewUserView(admin),
	})
}

func (a *adminController) Stats(c echo.Context) error {
	stats, err := a.statsService.Overview(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
