package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type UploadController interface {
	Upload(c echo.Context) error
}

type uploadController struct {
	uploadService service.UploadService
}

func newUploadController(uploadService service.UploadService) UploadController {
	return &uploadController{
		uploadService: uploadService,
	}
}

func (u *uploadController) Upload(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return fmt.Errorf("%w: no file uploaded", dto.ErrInvalidRequest)
		}
		return fmt.Errorf("%w: %v", dto.ErrInvalidRequest, err)
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logrus.Errorf("Error closing uploaded file: %v", err)
		}
	}()

	response, err := u.uploadService.Store(c.Request().Context(), header.Filename, header.Header.Get(echo.HeaderContentType), header.Size, file)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response)
}
