package repository

import (
	"context"
	"errors"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Repositories interface {
	User() UserRepository
	Submission() SubmissionRepository
	Vote() VoteRepository

	// Transaction runs fn against repositories bound to a single database
	// transaction. The transaction commits when fn returns nil.
	Transaction(ctx context.Context, fn func(tx Repositories) error) error
	Ping(ctx context.Context) error
}

type repositories struct {
	db                   *gorm.DB
	userRepository       UserRepository
	submissionRepository SubmissionRepository
	voteRepository       VoteRepository
}

// Migrate creates or updates the tables for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{}, &model.Submission{}, &model.Vote{})
}

func NewRepositories(db *gorm.DB) Repositories {
	err := Migrate(db)
	if err != nil {
		logrus.Panic(err)
	}
	return newRepositories(db)
}

func newRepositories(db *gorm.DB) *repositories {
	return &repositories{
		db:                   db,
		userRepository:       newUserRepository(db),
		submissionRepository: newSubmissionRepository(db),
		voteRepository:       newVoteRepository(db),
	}
}

func (r repositories) User() UserRepository {
	return r.userRepository
}

func (r repositories) Submission() SubmissionRepository {
	return r.submissionRepository
}

func (r repositories) Vote() VoteRepository {
	return r.voteRepository
}

func (r repositories) Transaction(ctx context.Context, fn func(tx Repositories) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepositories(tx))
	})
	if err == nil || isTaxonomyError(err) {
		return err
	}
	return wrapError(err)
}

func (r repositories) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return wrapError(err)
	}
	return wrapError(sqlDB.PingContext(ctx))
}

func isTaxonomyError(err error) bool {
	for _, target := range []error{
		dto.ErrInvalidRequest, dto.ErrNotAuthorized, dto.ErrInvalidCredentials,
		dto.ErrForbidden, dto.ErrNotFound, dto.ErrAlreadyExists, dto.ErrDuplicateVote,
		dto.ErrQuotaExhausted, dto.ErrInvalidOperation, dto.ErrInternalFailure,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
