package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/model"
	"github.com/krakosik/symposium/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	AdminLogin    = "organizer"
	AdminPassword = "correct-horse"
	JWTSecret     = "test-jwt-secret"
)

// Config returns a configuration pointing at a private in-memory sqlite database.
func Config(t *testing.T) dto.Config {
	t.Helper()

	return dto.Config{
		Port:             8080,
		DatabaseDriver:   dto.DatabaseDriverSqlite,
		DatabaseURL:      fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		AdminLogin:       AdminLogin,
		AdminPassword:    AdminPassword,
		JWTSecret:        JWTSecret,
		TokenTTL:         24 * time.Hour,
		UploadBackend:    dto.UploadBackendLocal,
		UploadDir:        t.TempDir(),
		RabbitMQExchange: "votes",
		LogLevel:         "error",
		LogFormat:        "text",
	}
}

// SetupTestDB opens a fresh, migrated in-memory database that is closed when
// the test finishes.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := repository.Open(Config(t))
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func SetupRepositories(t *testing.T) repository.Repositories {
	t.Helper()

	return repository.NewRepositories(SetupTestDB(t))
}

func CreateUser(t *testing.T, repos repository.Repositories, email, name string, studentID *string, isAdmin bool) model.User {
	t.Helper()

	user, err := repos.User().Create(context.Background(), model.User{
		Email:     email,
		Name:      &name,
		StudentID: studentID,
		IsAdmin:   isAdmin,
	})
	require.NoError(t, err)
	return user
}

func CreateSubmission(t *testing.T, repos repository.Repositories, author model.User, title string) model.Submission {
	t.Helper()

	submission, err := repos.Submission().Create(context.Background(), model.Submission{
		Title:       title,
		Type:        model.SubmissionTypePaper,
		AuthorName:  author.DisplayName(),
		AuthorEmail: author.Email,
		AuthorID:    author.ID,
	})
	require.NoError(t, err)
	return submission
}

// AssertVoteCounts checks the denormalized counter of every submission
// against the live votes referencing it.
func AssertVoteCounts(t *testing.T, repos repository.Repositories) {
	t.Helper()

	ctx := context.Background()
	submissions, err := repos.Submission().List(ctx)
	require.NoError(t, err)
	for _, s := range submissions {
		live, err := repos.Vote().CountBySubmissionID(ctx, s.ID)
		require.NoError(t, err)
		require.Equalf(t, live, int64(s.VoteCount), "submission %q counter drifted", s.Title)
	}
}

func Ptr[T any](v T) *T {
	return &v
}
