package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/model"
	"github.com/krakosik/symposium/internal/repository"
	"github.com/sirupsen/logrus"
)

type UserService interface {
	// ResolveOrCreateAuthor finds the author by email, then by student id,
	// and creates them when neither matches. It runs against tx so callers
	// can make it part of a larger transaction.
	ResolveOrCreateAuthor(ctx context.Context, tx repository.Repositories, email, name string, studentID *string) (model.User, error)
	List(ctx context.Context) ([]dto.UserWithCounts, error)
	Update(ctx context.Context, actor model.User, id string, request dto.UpdateUserRequest) (dto.UserWithCounts, error)
	SetAdmin(ctx context.Context, actor model.User, id string, isAdmin bool) (dto.UserWithCounts, error)
	Delete(ctx context.Context, actor model.User, id string) error
}

type userService struct {
	repositories repository.Repositories
	voteService  VoteService
}

func newUserService(repositories repository.Repositories, voteService VoteService) UserService {
	return &userService{
		repositories: repositories,
		voteService:  voteService,
	}
}

func (u *userService) ResolveOrCreateAuthor(ctx context.Context, tx repository.Repositories, email, name string, studentID *string) (model.User, error) {
	user, err := tx.User().GetByEmail(ctx, email)
	if err == nil {
		if studentID != nil && user.StudentID == nil {
			user.StudentID = studentID
			return saveUser(ctx, tx, user)
		}
		return user, nil
	}
	if !errors.Is(err, dto.ErrNotFound) {
		return model.User{}, err
	}

	if studentID != nil {
		user, err = tx.User().GetByStudentID(ctx, *studentID)
		if err == nil {
			user.Email = email
			user.Name = &name
			return saveUser(ctx, tx, user)
		}
		if !errors.Is(err, dto.ErrNotFound) {
			return model.User{}, err
		}
	}

	user, err = tx.User().Create(ctx, model.User{
		Email:     email,
		Name:      &name,
		StudentID: studentID,
	})
	if err != nil {
		return model.User{}, uniqueClash(err)
	}
	return user, nil
}

func (u *userService) List(ctx context.Context) ([]dto.UserWithCounts, error) {
	users, err := u.repositories.User().List(ctx)
	if err != nil {
		return nil, err
	}
	submissions, err := u.repositories.Submission().CountByAuthor(ctx)
	if err != nil {
		return nil, err
	}
	votes, err := u.repositories.Vote().CountByVoter(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.UserWithCounts, 0, len(users))
	for _, user := range users {
		result = append(result, dto.UserWithCounts{
			User: user,
			Count: dto.UserCounts{
				Submissions: submissions[user.ID],
				Votes:       votes[user.ID],
			},
		})
	}
	return result, nil
}

func (u *userService) Update(ctx context.Context, actor model.User, id string, request dto.UpdateUserRequest) (dto.UserWithCounts, error) {
	if request.IsAdmin != nil && !*request.IsAdmin && actor.ID == id {
		return dto.UserWithCounts{}, fmt.Errorf("%w: cannot revoke your own administrator rights", dto.ErrInvalidOperation)
	}

	user, err := u.repositories.User().GetByID(ctx, id)
	if err != nil {
		return dto.UserWithCounts{}, err
	}

	if request.Name != nil {
		user.Name = request.Name
	}
	if request.Email != nil {
		user.Email = *request.Email
	}
	if request.StudentID != nil {
		user.StudentID = request.StudentID
	}
	if request.IsAdmin != nil {
		user.IsAdmin = *request.IsAdmin
	}

	user, err = saveUser(ctx, u.repositories, user)
	if err != nil {
		return dto.UserWithCounts{}, err
	}

	logrus.Infof("Administrator %s updated user %s (%s)", actor.DisplayName(), user.DisplayName(), user.ID)
	return u.withCounts(ctx, user)
}

func (u *userService) SetAdmin(ctx context.Context, actor model.User, id string, isAdmin bool) (dto.UserWithCounts, error) {
	return u.Update(ctx, actor, id, dto.UpdateUserRequest{IsAdmin: &isAdmin})
}

func (u *userService) Delete(ctx context.Context, actor model.User, id string) error {
	if actor.ID == id {
		return fmt.Errorf("%w: cannot delete your own account", dto.ErrInvalidOperation)
	}

	target, err := u.repositories.User().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if target.IsAdmin {
		return fmt.Errorf("%w: administrator accounts must be demoted before deletion", dto.ErrInvalidOperation)
	}

	var votesReleased, submissionsDeleted int64
	err = u.repositories.Transaction(ctx, func(tx repository.Repositories) error {
		var err error
		votesReleased, err = u.voteService.ReleaseVoter(ctx, tx, id)
		if err != nil {
			return err
		}

		submissionIDs, err := tx.Submission().ListIDsByAuthor(ctx, id)
		if err != nil {
			return err
		}
		if _, err := u.voteService.ReleaseSubmissions(ctx, tx, submissionIDs); err != nil {
			return err
		}
		submissionsDeleted, err = tx.Submission().DeleteByAuthor(ctx, id)
		if err != nil {
			return err
		}

		return tx.User().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	logrus.Infof("Administrator %s deleted user %s (%d votes, %d submissions)", actor.DisplayName(), target.DisplayName(), votesReleased, submissionsDeleted)
	return nil
}

func (u *userService) withCounts(ctx context.Context, user model.User) (dto.UserWithCounts, error) {
	submissions, err := u.repositories.Submission().CountByAuthorID(ctx, user.ID)
	if err != nil {
		return dto.UserWithCounts{}, err
	}
	votes, err := u.repositories.Vote().CountByVoterID(ctx, user.ID)
	if err != nil {
		return dto.UserWithCounts{}, err
	}

	return dto.UserWithCounts{
		User:  user,
		Count: dto.UserCounts{Submissions: submissions, Votes: votes},
	}, nil
}

func saveUser(ctx context.Context, repositories repository.Repositories, user model.User) (model.User, error) {
	saved, err := repositories.User().Save(ctx, user)
	if err != nil {
		return model.User{}, uniqueClash(err)
	}
	return saved, nil
}

// uniqueClash reports a duplicate email or student id as a client error.
func uniqueClash(err error) error {
	if errors.Is(err, dto.ErrAlreadyExists) {
		return fmt.Errorf("%w: email or student id already belongs to another user", dto.ErrInvalidRequest)
	}
	return err
}
