package controller

import (
	"net/http"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/service"
	"github.com/labstack/echo/v4"
)

type SubmissionController interface {
	List(c echo.Context) error
	Create(c echo.Context) error
	Leaderboard(c echo.Context) error

	AdminCreate(c echo.Context) error
	Update(c echo.Context) error
	Delete(c echo.Context) error
}

type submissionController struct {
	submissionService service.SubmissionService
}

func newSubmissionController(submissionService service.SubmissionService) SubmissionController {
	return &submissionController{
		submissionService: submissionService,
	}
}

func (s *submissionController) List(c echo.Context) error {
	submissions, err := s.submissionService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, submissions)
}

func (s *submissionController) Create(c echo.Context) error {
	var request dto.SubmissionRequest
	if err := bind(c, &request); err != nil {
		return err
	}

	submission, err := s.submissionService.Create(c.Request().Context(), request)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, submission)
}

func (s *submissionController) Leaderboard(c echo.Context) error {
	submissions, err := s.submissionService.Leaderboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, submissions)
}

func (s *submissionController) AdminCreate(c echo.Context) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}
	var request dto.AdminSubmissionRequest
	if err := bind(c, &request); err != nil {
		return err
	}

	submission, err := s.submissionService.AdminCreate(c.Request().Context(), admin, request)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, submission)
}

func (s *submissionController) Update(c echo.Context) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}
	var request dto.AdminSubmissionRequest
	if err := bind(c, &request); err != nil {
		return err
	}

	submission, err := s.submissionService.Update(c.Request().Context(), admin, c.Param("id"), request)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, submission)
}

func (s *submissionController) Delete(c echo.Context) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}

	if err := s.submissionService.Delete(c.Request().Context(), admin, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Submission deleted"})
}
