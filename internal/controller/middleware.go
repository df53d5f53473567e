package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	ctx "github.com/krakosik/symposium/internal/context"
	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// AdminAuth resolves the bearer token into an administrator and stores it in
// the request context. Requests without a valid admin token never reach next.
func AdminAuth(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return fmt.Errorf("%w: missing authorization header", dto.ErrNotAuthorized)
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				return fmt.Errorf("%w: invalid authorization format", dto.ErrNotAuthorized)
			}

			admin, err := authService.Authenticate(c.Request().Context(), strings.TrimSpace(token))
			if err != nil {
				return err
			}

			c.SetRequest(c.Request().WithContext(ctx.WithAdmin(c.Request().Context(), admin)))
			return next(c)
		}
	}
}

func currentAdmin(c echo.Context) (ctx.User, error) {
	admin, ok := ctx.GetAdminFromContext(c.Request().Context())
	if !ok {
		return ctx.User{}, fmt.Errorf("%w: no administrator in request", dto.ErrNotAuthorized)
	}
	return admin, nil
}

// HTTPErrorHandler writes every error as {"error": message} with the status
// derived from the error taxonomy.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := dto.StatusCode(err)
	message := err.Error()

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		message = fmt.Sprint(httpErr.Message)
	} else if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"method": c.Request().Method,
			"uri":    c.Request().RequestURI,
		}).Errorf("Request failed: %v", err)
		message = "internal server error"
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, dto.ErrorResponse{Error: message})
	}
	if err != nil {
		logrus.Errorf("Error writing error response: %v", err)
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logrus.WithFields(logrus.Fields{
				"method":    v.Method,
				"uri":       v.URI,
				"status":    v.Status,
				"latency":   v.Latency.String(),
				"remote_ip": v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}

// bind decodes the JSON body into request, rejecting unknown fields, and
// validates it.
func bind(c echo.Context, request dto.Validator) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(request); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", dto.ErrInvalidRequest, err)
	}
	return request.Validate()
}
