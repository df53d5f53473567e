package controller

import (
	"net/http"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/service"
	"github.com/labstack/echo/v4"
)

type UserController interface {
	List(c echo.Context) error
	Update(c echo.Context) error
	ToggleAdmin(c echo.Context) error
	Delete(c echo.Context) error
}

type userController struct {
	userService service.UserService
}

func newUserController(userService service.UserService) UserController {
	return &userController{
		userService: userService,
	}
}

func (u *userController) List(c echo.Context) error {
	users, err := u.userService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (u *userController) Update(c echo.Context) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}
	var request dto.UpdateUserRequest
	if err := bind(c, &request); err != nil {
		return err
	}

	user, err := u.userService.Update(c.Request().Context(), admin, c.Param("id"), request)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (u *userController) ToggleAdmin(c echo.Context) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}
	var request dto.SetAdminRequest
	if err := bind(c, &request); err != nil {
		return err
	}

	user, err := u.userService.SetAdmin(c.Request().Context(), admin, c.Param("id"), *request.IsAdmin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (u *userController) Delete(c echo.Context) error {
	admin, err := currentAdmin(c)
	if err != nil {
		return err
	}

	if err := u.userService.Delete(c.Request().Context(), admin, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "User deleted"})
}
