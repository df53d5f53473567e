package service

import (
	"context"
	"fmt"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/model"
	"github.com/krakosik/symposium/internal/repository"
	"github.com/sirupsen/logrus"
)

type SubmissionService interface {
	Create(ctx context.Context, request dto.SubmissionRequest) (model.Submission, error)
	AdminCreate(ctx context.Context, actor model.User, request dto.AdminSubmissionRequest) (model.Submission, error)
	Update(ctx context.Context, actor model.User, id string, request dto.AdminSubmissionRequest) (model.Submission, error)
	Delete(ctx context.Context, actor model.User, id string) error
	List(ctx context.Context) ([]model.Submission, error)
	Leaderboard(ctx context.Context) ([]model.Submission, error)
}

type submissionService struct {
	repositories repository.Repositories
	userService  UserService
	voteService  VoteService
}

func newSubmissionService(repositories repository.Repositories, userService UserService, voteService VoteService) SubmissionService {
	return &submissionService{
		repositories: repositories,
		userService:  userService,
		voteService:  voteService,
	}
}

func (s *submissionService) Create(ctx context.Context, request dto.SubmissionRequest) (model.Submission, error) {
	created, err := s.create(ctx, request, false)
	if err != nil {
		return model.Submission{}, err
	}

	logrus.Infof("Submission %q received from %s", created.Title, created.AuthorEmail)
	return created, nil
}

func (s *submissionService) AdminCreate(ctx context.Context, actor model.User, request dto.AdminSubmissionRequest) (model.Submission, error) {
	created, err := s.create(ctx, request.SubmissionRequest, request.IsPresented != nil && *request.IsPresented)
	if err != nil {
		return model.Submission{}, err
	}

	logrus.Infof("Administrator %s created submission %s", actor.Email, created.ID)
	return created, nil
}

func (s *submissionService) create(ctx context.Context, request dto.SubmissionRequest, isPresented bool) (model.Submission, error) {
	submissionType, ok := model.ParseSubmissionType(request.Type)
	if !ok {
		return model.Submission{}, fmt.Errorf("%w: unknown submission type %q", dto.ErrInvalidRequest, request.Type)
	}

	var created model.Submission
	err := s.repositories.Transaction(ctx, func(tx repository.Repositories) error {
		author, err := s.userService.ResolveOrCreateAuthor(ctx, tx, request.AuthorEmail, request.AuthorName, request.AuthorStudentID)
		if err != nil {
			return err
		}

		submission := newSubmission(request, submissionType)
		submission.IsPresented = isPresented
		submission.AuthorID = author.ID

		created, err = tx.Submission().Create(ctx, submission)
		if err != nil {
			return err
		}
		created.Author = &author
		return nil
	})
	if err != nil {
		return model.Submission{}, err
	}

	return created, nil
}

func (s *submissionService) Update(ctx context.Context, actor model.User, id string, request dto.AdminSubmissionRequest) (model.Submission, error) {
	submissionType, ok := model.ParseSubmissionType(request.Type)
	if !ok {
		return model.Submission{}, fmt.Errorf("%w: unknown submission type %q", dto.ErrInvalidRequest, request.Type)
	}

	submission := newSubmission(request.SubmissionRequest, submissionType)
	submission.ID = id
	submission.IsPresented = request.IsPresented != nil && *request.IsPresented

	if err := s.repositories.Submission().UpdateDetails(ctx, submission); err != nil {
		return model.Submission{}, err
	}

	logrus.Infof("Administrator %s updated submission %s", actor.Email, id)
	return s.repositories.Submission().GetByID(ctx, id)
}

func (s *submissionService) Delete(ctx context.Context, actor model.User, id string) error {
	var released int64
	err := s.repositories.Transaction(ctx, func(tx repository.Repositories) error {
		if _, err := tx.Submission().GetByID(ctx, id); err != nil {
			return err
		}

		var err error
		released, err = s.voteService.ReleaseSubmissions(ctx, tx, []string{id})
		if err != nil {
			return err
		}
		return tx.Submission().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	logrus.Infof("Administrator %s deleted submission %s with %d votes", actor.Email, id, released)
	return nil
}

func (s *submissionService) List(ctx context.Context) ([]model.Submission, error) {
	return s.repositories.Submission().List(ctx)
}

func (s *submissionService) Leaderboard(ctx context.Context) ([]model.Submission, error) {
	return s.repositories.Submission().Leaderboard(ctx)
}

func newSubmission(request dto.SubmissionRequest, submissionType model.SubmissionType) model.Submission {
	return model.Submission{
		Title:              request.Title,
		Description:        request.Description,
		Abstract:           request.Abstract,
		Keywords:           request.Keywords,
		Type:               submissionType,
		AuthorName:         request.AuthorName,
		AuthorEmail:        request.AuthorEmail,
		AuthorStudentID:    request.AuthorStudentID,
		CoAuthors:          request.CoAuthors,
		CoAuthorStudentIDs: request.CoAuthorStudentIDs,
		FileURL:            request.FileURL,
		FileName:           request.FileName,
		FileSize:           request.FileSize,
	}
}
