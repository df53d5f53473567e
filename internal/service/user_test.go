package service_test

import (
	"context"
	"testing"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/repository"
	"github.com/krakosik/symposium/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOrCreateAuthorPrecedence(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	users := f.services.User()

	created, err := users.ResolveOrCreateAuthor(ctx, f.repos, "a@x.edu", "Alice", testutil.Ptr("S1"))
	require.NoError(t, err)

	// Email match short-circuits and keeps the original name.
	byEmail, err := users.ResolveOrCreateAuthor(ctx, f.repos, "a@x.edu", "Alice2", nil)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "Alice", *byEmail.Name)

	// A student id match merges into the same identity and takes the new email and name.
	byStudent, err := users.ResolveOrCreateAuthor(ctx, f.repos, "alice@new.edu", "Alice Smith", testutil.Ptr("S1"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, byStudent.ID)
	assert.Equal(t, "alice@new.edu", byStudent.Email)
	assert.Equal(t, "Alice Smith", *byStudent.Name)

	count, err := f.repos.User().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestResolveOrCreateAuthorAttachesStudentID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	users := f.services.User()

	created, err := users.ResolveOrCreateAuthor(ctx, f.repos, "b@x.edu", "Bob", nil)
	require.NoError(t, err)
	assert.Nil(t, created.StudentID)

	updated, err := users.ResolveOrCreateAuthor(ctx, f.repos, "b@x.edu", "Bob", testutil.Ptr("S2"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	require.NotNil(t, updated.StudentID)
	assert.Equal(t, "S2", *updated.StudentID)

	// An existing student id is never overwritten through the email path.
	again, err := users.ResolveOrCreateAuthor(ctx, f.repos, "b@x.edu", "Bob", testutil.Ptr("S3"))
	require.NoError(t, err)
	assert.Equal(t, "S2", *again.StudentID)
}

func TestResolveOrCreateAuthorInsideTransaction(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	err := f.repos.Transaction(ctx, func(tx repository.Repositories) error {
		if _, err := f.services.User().ResolveOrCreateAuthor(ctx, tx, "c@x.edu", "Carol", nil); err != nil {
			return err
		}
		return dto.ErrInvalidRequest
	})
	require.ErrorIs(t, err, dto.ErrInvalidRequest)

	_, err = f.repos.User().GetByEmail(ctx, "c@x.edu")
	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func TestAdminSelfProtection(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	admin := f.admin(t)
	other := testutil.CreateUser(t, f.repos, "other-admin@x.edu", "Other", nil, true)

	_, err := f.services.User().SetAdmin(ctx, admin, admin.ID, false)
	assert.ErrorIs(t, err, dto.ErrInvalidOperation)

	assert.ErrorIs(t, f.services.User().Delete(ctx, admin, admin.ID), dto.ErrInvalidOperation)
	assert.ErrorIs(t, f.services.User().Delete(ctx, admin, other.ID), dto.ErrInvalidOperation)

	demoted, err := f.services.User().SetAdmin(ctx, admin, other.ID, false)
	require.NoError(t, err)
	assert.False(t, demoted.IsAdmin)

	require.NoError(t, f.services.User().Delete(ctx, admin, other.ID))
	assert.ErrorIs(t, f.services.User().Delete(ctx, admin, other.ID), dto.ErrNotFound)

	// Granting yourself admin again is harmless.
	self, err := f.services.User().SetAdmin(ctx, admin, admin.ID, true)
	require.NoError(t, err)
	assert.True(t, self.IsAdmin)
}

func TestDeleteUserReconcilesCounters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	admin := f.admin(t)

	alice := testutil.CreateUser(t, f.repos, "alice@x.edu", "Alice", testutil.Ptr("S1"), false)
	carol := testutil.CreateUser(t, f.repos, "carol@x.edu", "Carol", testutil.Ptr("S3"), false)
	alicePaper := testutil.CreateSubmission(t, f.repos, alice, "Alice's paper")
	carolPaper := testutil.CreateSubmission(t, f.repos, carol, "Carol's paper")

	for _, cast := range []struct{ submission, student, name string }{
		{alicePaper.ID, "S2", "Bob"},
		{carolPaper.ID, "S2", "Bob"},
		{carolPaper.ID, "S1", "Alice"},
		{alicePaper.ID, "S3", "Carol"},
	} {
		_, err := f.services.Vote().Cast(ctx, cast.submission, cast.student, cast.name)
		require.NoError(t, err)
	}
	bob, err := f.repos.User().GetByStudentID(ctx, "S2")
	require.NoError(t, err)

	require.NoError(t, f.services.User().Delete(ctx, admin, bob.ID))
	assert.Equal(t, 1, f.voteCount(t, alicePaper.ID))
	assert.Equal(t, 1, f.voteCount(t, carolPaper.ID))
	testutil.AssertVoteCounts(t, f.repos)

	// Deleting an author removes their submissions and the votes on them,
	// as well as the votes they cast elsewhere.
	require.NoError(t, f.services.User().Delete(ctx, admin, alice.ID))
	_, err = f.repos.Submission().GetByID(ctx, alicePaper.ID)
	assert.ErrorIs(t, err, dto.ErrNotFound)
	assert.Equal(t, 0, f.voteCount(t, carolPaper.ID))
	testutil.AssertVoteCounts(t, f.repos)

	votes, err := f.repos.Vote().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, votes)

	remaining, err := f.services.Vote().Remaining(ctx, "S3")
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)
}

func TestUpdateUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	admin := f.admin(t)
	bob := testutil.CreateUser(t, f.repos, "bob@x.edu", "Bob", testutil.Ptr("S2"), false)
	testutil.CreateUser(t, f.repos, "carol@x.edu", "Carol", testutil.Ptr("S3"), false)
	testutil.CreateSubmission(t, f.repos, bob, "Bob's work")

	updated, err := f.services.User().Update(ctx, admin, bob.ID, dto.UpdateUserRequest{
		Name:    testutil.Ptr("Robert"),
		IsAdmin: testutil.Ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Robert", *updated.Name)
	assert.True(t, updated.IsAdmin)
	assert.Equal(t, "bob@x.edu", updated.Email)
	assert.EqualValues(t, 1, updated.Count.Submissions)

	_, err = f.services.User().Update(ctx, admin, bob.ID, dto.UpdateUserRequest{Email: testutil.Ptr("carol@x.edu")})
	assert.ErrorIs(t, err, dto.ErrInvalidRequest)

	_, err = f.services.User().Update(ctx, admin, bob.ID, dto.UpdateUserRequest{StudentID: testutil.Ptr("S3")})
	assert.ErrorIs(t, err, dto.ErrInvalidRequest)

	_, err = f.services.User().Update(ctx, admin, "missing", dto.UpdateUserRequest{Name: testutil.Ptr("x")})
	assert.ErrorIs(t, err, dto.ErrNotFound)
}

func TestListUsersWithCounts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := f.submission(t, "S")
	_, err := f.services.Vote().Cast(ctx, s.ID, "S9", "Voter")
	require.NoError(t, err)

	users, err := f.services.User().List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	counts := map[string]dto.UserCounts{}
	for _, u := range users {
		counts[u.Email] = u.Count
	}
	assert.Equal(t, dto.UserCounts{Submissions: 1}, counts["author@x.edu"])
	assert.Equal(t, dto.UserCounts{Votes: 1}, counts["S9@student.edu"])
}
