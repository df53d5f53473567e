package controller

import (
	"fmt"
	"net/http"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/service"
	"github.com/labstack/echo/v4"
)

type VoteController interface {
	Cast(c echo.Context) error
	Remaining(c echo.Context) error

	List(c echo.Context) error
	Delete(c echo.Context) error
	Clear(c echo.Context) error
	Stats(c echo.Context) error
}

type voteController struct {
	voteService service.VoteService
}

func newVoteController(voteService service.VoteService) VoteController {
	return &voteController{
		voteService: voteService,
	}
}

func (v *voteController) Cast(c echo.Context) error {
	var request dto.CastVoteRequest
	if err := bind(c, &request); err != nil {
		return err
	}

	remaining, err := v.voteService.Cast(c.Request().Context(), request.SubmissionID, request.VoterStudentID, request.VoterName)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.CastVoteResponse{
		Message:        "Vote recorded successfully",
		RemainingVotes: remaining,
	})
}

func (v *voteController) Remaining(c echo.Context) error {
	var request dto.RemainingVotesRequest
	if err := bind(c, &request); err != nil {
		return err
	}

	remaining, err := v.voteService.Remaining(c.Request().Context(), request.VoterStudentID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.RemainingVotesResponse{RemainingVotes: remaining})
}

func (v *voteController) List(c echo.Context) error {
	votes, err := v.voteService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, votes)
}

func (v *voteController) Delete(c echo.Context) error {
	if err := v.voteService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Vote deleted"})
}

func (v *voteController) Clear(c echo.Context) error {
	removed, err := v.voteService.Clear(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: fmt.Sprintf("All votes cleared (%d removed)", removed)})
}

func (v *voteController) Stats(c echo.Context) error {
	stats, err := v.voteService.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
