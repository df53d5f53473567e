package controller

import (
	"net/http"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/service"
	"github.com/labstack/echo/v4"
)

const (
	serviceName    = "symposium"
	serviceVersion = "1.0.0"
)

type InfoController interface {
	Info(c echo.Context) error
	Health(c echo.Context) error
}

type infoController struct {
	statsService service.StatsService
}

func newInfoController(statsService service.StatsService) InfoController {
	return &infoController{
		statsService: statsService,
	}
}

func (i *infoController) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.InfoResponse{Name: serviceName, Version: serviceVersion})
}

func (i *infoController) Health(c echo.Context) error {
	if err := i.statsService.Health(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
}
