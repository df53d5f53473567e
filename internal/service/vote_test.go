package service_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/model"
	"github.com/krakosik/symposium/internal/service"
	"github.com/krakosik/symposium/internal/testutil"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := f.submission(t, "S")
	other := f.submission(t, "Other")
	require.Equal(t, 0, f.voteCount(t, s.ID))

	remaining, err := f.services.Vote().Cast(ctx, s.ID, "S001", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 4, remaining)
	assert.Equal(t, 1, f.voteCount(t, s.ID))
	testutil.AssertVoteCounts(t, f.repos)

	votes, err := f.services.Vote().List(ctx)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, "S001", votes[0].VoterStudentID)

	require.NoError(t, f.services.Vote().Delete(ctx, votes[0].ID))
	assert.Equal(t, 0, f.voteCount(t, s.ID))
	testutil.AssertVoteCounts(t, f.repos)

	for _, voter := range []string{"S002", "S003"} {
		_, err := f.services.Vote().Cast(ctx, s.ID, voter, "Voter "+voter)
		require.NoError(t, err)
		_, err = f.services.Vote().Cast(ctx, other.ID, voter, "Voter "+voter)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, f.voteCount(t, s.ID))

	removed, err := f.services.Vote().Clear(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, removed)

	total, err := f.repos.Vote().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Equal(t, 0, f.voteCount(t, s.ID))
	assert.Equal(t, 0, f.voteCount(t, other.ID))

	var kinds []string
	for _, event := range f.rabbit.events(t) {
		kinds = append(kinds, event.Type)
	}
	assert.Equal(t, []string{
		service.VoteEventCast, service.VoteEventDeleted,
		service.VoteEventCast, service.VoteEventCast, service.VoteEventCast, service.VoteEventCast,
		service.VoteEventCleared,
	}, kinds)
}

func TestCastCreatesVoter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := f.submission(t, "S")

	_, err := f.services.Vote().Cast(ctx, s.ID, " S001 ", " Alice ")
	require.NoError(t, err)

	voter, err := f.repos.User().GetByStudentID(ctx, "S001")
	require.NoError(t, err)
	assert.Equal(t, "S001@student.edu", voter.Email)
	assert.Equal(t, "Alice", *voter.Name)
	assert.False(t, voter.IsAdmin)

	events := f.rabbit.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, voter.ID, events[0].VoterID)
	assert.Equal(t, s.ID, events[0].SubmissionID)
}

func TestCastReusesExistingVoter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := f.submission(t, "S")
	alice := testutil.CreateUser(t, f.repos, "alice@x.edu", "Alice", testutil.Ptr("S001"), false)

	_, err := f.services.Vote().Cast(ctx, s.ID, "S001", "Somebody Else")
	require.NoError(t, err)

	count, err := f.repos.Vote().CountByVoterID(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	users, err := f.repos.User().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, users)
}

func TestCastRejectsDuplicate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := f.submission(t, "S")

	_, err := f.services.Vote().Cast(ctx, s.ID, "S001", "Alice")
	require.NoError(t, err)

	_, err = f.services.Vote().Cast(ctx, s.ID, "S001", "Alice")
	assert.ErrorIs(t, err, dto.ErrDuplicateVote)
	assert.Equal(t, 1, f.voteCount(t, s.ID))

	remaining, err := f.services.Vote().Remaining(ctx, "S001")
	require.NoError(t, err)
	assert.Equal(t, 4, remaining)
}

func TestCastEnforcesQuota(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var submissions []model.Submission
	for i := 0; i <= service.VoteQuota; i++ {
		submissions = append(submissions, f.submission(t, fmt.Sprintf("Work %d", i)))
	}

	previous := service.VoteQuota
	for i := 0; i < service.VoteQuota; i++ {
		remaining, err := f.services.Vote().Cast(ctx, submissions[i].ID, "S001", "Alice")
		require.NoError(t, err)
		assert.Equal(t, service.VoteQuota-(i+1), remaining)

		left, err := f.services.Vote().Remaining(ctx, "S001")
		require.NoError(t, err)
		assert.Equal(t, remaining, left)
		assert.LessOrEqual(t, left, previous)
		previous = left
	}

	_, err := f.services.Vote().Cast(ctx, submissions[service.VoteQuota].ID, "S001", "Alice")
	assert.ErrorIs(t, err, dto.ErrQuotaExhausted)
	assert.Equal(t, 0, f.voteCount(t, submissions[service.VoteQuota].ID))

	voter, err := f.repos.User().GetByStudentID(ctx, "S001")
	require.NoError(t, err)
	count, err := f.repos.Vote().CountByVoterID(ctx, voter.ID)
	require.NoError(t, err)
	assert.EqualValues(t, service.VoteQuota, count)
	testutil.AssertVoteCounts(t, f.repos)

	// Another voter is unaffected.
	remaining, err := f.services.Vote().Cast(ctx, submissions[service.VoteQuota].ID, "S002", "Bob")
	require.NoError(t, err)
	assert.Equal(t, 4, remaining)
}

// castConcurrently runs every cast at once and returns their errors.
func castConcurrently(casts []func(ctx context.Context) error) []error {
	var wg sync.WaitGroup
	errs := make([]error, len(casts))
	start := make(chan struct{})
	for i, cast := range casts {
		wg.Add(1)
		go func(i int, cast func(ctx context.Context) error) {
			defer wg.Done()
			<-start
			errs[i] = cast(context.Background())
		}(i, cast)
	}
	close(start)
	wg.Wait()
	return errs
}

func TestConcurrentCastsRespectQuota(t *testing.T) {
	f := setup(t)

	var casts []func(ctx context.Context) error
	for i := 0; i < 2*service.VoteQuota; i++ {
		submission := f.submission(t, fmt.Sprintf("Work %d", i))
		casts = append(casts, func(ctx context.Context) error {
			_, err := f.services.Vote().Cast(ctx, submission.ID, "S001", "Alice")
			return err
		})
	}

	succeeded := 0
	for _, err := range castConcurrently(casts) {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, dto.ErrQuotaExhausted)
	}
	assert.Equal(t, service.VoteQuota, succeeded)

	voter, err := f.repos.User().GetByStudentID(context.Background(), "S001")
	require.NoError(t, err)
	count, err := f.repos.Vote().CountByVoterID(context.Background(), voter.ID)
	require.NoError(t, err)
	assert.EqualValues(t, service.VoteQuota, count)
	testutil.AssertVoteCounts(t, f.repos)
}

func TestConcurrentCastsForSamePair(t *testing.T) {
	f := setup(t)
	submission := f.submission(t, "Contested")

	var casts []func(ctx context.Context) error
	for i := 0; i < 8; i++ {
		casts = append(casts, func(ctx context.Context) error {
			_, err := f.services.Vote().Cast(ctx, submission.ID, "S001", "Alice")
			return err
		})
	}

	succeeded := 0
	for _, err := range castConcurrently(casts) {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, dto.ErrDuplicateVote)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.voteCount(t, submission.ID))

	votes, err := f.repos.Vote().Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, votes)
	testutil.AssertVoteCounts(t, f.repos)

	remaining, err := f.services.Vote().Remaining(context.Background(), "S001")
	require.NoError(t, err)
	assert.Equal(t, service.VoteQuota-1, remaining)
}

func TestCastValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := f.submission(t, "S")

	for _, args := range [][3]string{
		{"", "S001", "Alice"},
		{s.ID, "", "Alice"},
		{s.ID, "S001", "  "},
	} {
		_, err := f.services.Vote().Cast(ctx, args[0], args[1], args[2])
		assert.ErrorIs(t, err, dto.ErrInvalidRequest)
	}

	_, err := f.services.Vote().Cast(ctx, "missing", "S001", "Alice")
	assert.ErrorIs(t, err, dto.ErrNotFound)

	// The rejected cast must not leave a voter behind.
	_, err = f.repos.User().GetByStudentID(ctx, "S001")
	assert.ErrorIs(t, err, dto.ErrNotFound)
	assert.Empty(t, f.rabbit.events(t))
}

func TestRemainingVotes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	remaining, err := f.services.Vote().Remaining(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, service.VoteQuota, remaining)

	_, err = f.services.Vote().Remaining(ctx, " ")
	assert.ErrorIs(t, err, dto.ErrInvalidRequest)
}

func TestDeleteVote(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := f.submission(t, "S")

	assert.ErrorIs(t, f.services.Vote().Delete(ctx, "missing"), dto.ErrNotFound)

	_, err := f.services.Vote().Cast(ctx, s.ID, "S001", "Alice")
	require.NoError(t, err)
	votes, err := f.services.Vote().List(ctx)
	require.NoError(t, err)
	require.Len(t, votes, 1)

	// Corrupt the counter: the decrement must still stop at zero.
	require.NoError(t, f.repos.Submission().ResetVoteCounts(ctx))
	require.NoError(t, f.services.Vote().Delete(ctx, votes[0].ID))
	assert.Equal(t, 0, f.voteCount(t, s.ID))

	remaining, err := f.services.Vote().Remaining(ctx, "S001")
	require.NoError(t, err)
	assert.Equal(t, service.VoteQuota, remaining)
}

func TestVoteStats(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	stats, err := f.services.Vote().Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, dto.VoteStatsResponse{}, stats)

	first := f.submission(t, "First")
	f.submission(t, "Second")
	_, err = f.services.Vote().Cast(ctx, first.ID, "S001", "Alice")
	require.NoError(t, err)
	_, err = f.services.Vote().Cast(ctx, first.ID, "S002", "Bob")
	require.NoError(t, err)

	stats, err = f.services.Vote().Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalVotes)
	assert.EqualValues(t, 2, stats.UniqueVoters)
	assert.EqualValues(t, 1, stats.SubmissionsWithVotes)
	assert.InDelta(t, 1.0, stats.AverageVotesPerSubmission, 1e-9)
}

func TestVoteMetrics(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := f.submission(t, "S")

	_, err := f.services.Vote().Cast(ctx, s.ID, "S001", "Alice")
	require.NoError(t, err)
	_, err = f.services.Vote().Cast(ctx, s.ID, "S001", "Alice")
	require.Error(t, err)
	_, err = f.services.Vote().Cast(ctx, "", "S001", "Alice")
	require.Error(t, err)

	expected := `
# HELP symposium_votes_cast_total Votes recorded successfully.
# TYPE symposium_votes_cast_total counter
symposium_votes_cast_total 1
# HELP symposium_vote_rejections_total Vote casts that were refused, by reason.
# TYPE symposium_vote_rejections_total counter
symposium_vote_rejections_total{reason="duplicate"} 1
symposium_vote_rejections_total{reason="invalid"} 1
`
	assert.NoError(t, promtestutil.GatherAndCompare(f.registry, strings.NewReader(expected),
		"symposium_votes_cast_total", "symposium_vote_rejections_total"))
}
