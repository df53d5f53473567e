package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/krakosik/symposium/internal/client"
	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/model"
	"github.com/krakosik/symposium/internal/repository"
	"github.com/sirupsen/logrus"
)

// VoteQuota is the number of live votes a single voter may hold.
const VoteQuota = 5

const (
	VoteEventCast    = "vote.cast"
	VoteEventDeleted = "vote.deleted"
	VoteEventCleared = "votes.cleared"
)

// VoteEvent is published after every committed vote mutation. The event type
// doubles as the routing key.
type VoteEvent struct {
	Type         string    `json:"type"`
	VoteID       string    `json:"voteId,omitempty"`
	SubmissionID string    `json:"submissionId,omitempty"`
	VoterID      string    `json:"voterId,omitempty"`
	Removed      int64     `json:"removed,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

type VoteService interface {
	Cast(ctx context.Context, submissionID, voterStudentID, voterName string) (int, error)
	Remaining(ctx context.Context, voterStudentID string) (int, error)
	Delete(ctx context.Context, voteID string) error
	Clear(ctx context.Context) (int64, error)

	// ReleaseVoter removes every vote cast by the voter inside tx and lowers
	// the affected counters accordingly.
	ReleaseVoter(ctx context.Context, tx repository.Repositories, voterID string) (int64, error)
	// ReleaseSubmissions removes the votes referencing submissions that are
	// about to be deleted inside tx.
	ReleaseSubmissions(ctx context.Context, tx repository.Repositories, submissionIDs []string) (int64, error)

	List(ctx context.Context) ([]model.Vote, error)
	Stats(ctx context.Context) (dto.VoteStatsResponse, error)
}

type voteService struct {
	repositories repository.Repositories
	rabbitClient client.RabbitClient
	metrics      *voteMetrics
}

func newVoteService(repositories repository.Repositories, rabbitClient client.RabbitClient, metrics *voteMetrics) VoteService {
	return &voteService{
		repositories: repositories,
		rabbitClient: rabbitClient,
		metrics:      metrics,
	}
}

func (v *voteService) Cast(ctx context.Context, submissionID, voterStudentID, voterName string) (int, error) {
	submissionID = strings.TrimSpace(submissionID)
	voterStudentID = strings.TrimSpace(voterStudentID)
	voterName = strings.TrimSpace(voterName)
	if submissionID == "" || voterStudentID == "" || voterName == "" {
		err := fmt.Errorf("%w: submission id, voter student id and voter name are required", dto.ErrInvalidRequest)
		v.metrics.rejected(err)
		return 0, err
	}

	var (
		remaining int
		cast      model.Vote
	)
	err := v.repositories.Transaction(ctx, func(tx repository.Repositories) error {
		voter, err := resolveVoter(ctx, tx, voterStudentID, voterName)
		if err != nil {
			return err
		}
		// Serializes concurrent casts by the same voter so the quota holds.
		if err := tx.User().LockByID(ctx, voter.ID); err != nil {
			return err
		}

		if _, err := tx.Submission().GetByID(ctx, submissionID); err != nil {
			return err
		}

		_, err = tx.Vote().GetByVoterAndSubmission(ctx, voter.ID, submissionID)
		if err == nil {
			return dto.ErrDuplicateVote
		}
		if !errors.Is(err, dto.ErrNotFound) {
			return err
		}

		count, err := tx.Vote().CountByVoterID(ctx, voter.ID)
		if err != nil {
			return err
		}
		if count >= VoteQuota {
			return fmt.Errorf("%w: all %d votes have been used", dto.ErrQuotaExhausted, VoteQuota)
		}

		cast, err = tx.Vote().Create(ctx, model.Vote{
			VoterID:        voter.ID,
			SubmissionID:   submissionID,
			VoterStudentID: voterStudentID,
		})
		if err != nil {
			if errors.Is(err, dto.ErrAlreadyExists) {
				return dto.ErrDuplicateVote
			}
			return err
		}

		if err := tx.Submission().IncrementVoteCount(ctx, submissionID); err != nil {
			return err
		}

		remaining = VoteQuota - int(count+1)
		return nil
	})
	if err != nil {
		v.metrics.rejected(err)
		return 0, err
	}

	v.metrics.cast.Inc()
	logrus.Infof("Voter %s voted for submission %s, %d votes left", voterStudentID, submissionID, remaining)
	v.publish(ctx, VoteEvent{
		Type:         VoteEventCast,
		VoteID:       cast.ID,
		SubmissionID: cast.SubmissionID,
		VoterID:      cast.VoterID,
	})

	return remaining, nil
}

// resolveVoter finds the voter by student id or creates one with a placeholder
// email. The create runs in a savepoint so that losing a race against a
// concurrent cast leaves tx usable for the re-read.
func resolveVoter(ctx context.Context, tx repository.Repositories, studentID, name string) (model.User, error) {
	voter, err := tx.User().GetByStudentID(ctx, studentID)
	if err == nil {
		return voter, nil
	}
	if !errors.Is(err, dto.ErrNotFound) {
		return model.User{}, err
	}

	err = tx.Transaction(ctx, func(sp repository.Repositories) error {
		voter, err = sp.User().Create(ctx, model.User{
			Email:     voterEmail(studentID),
			Name:      &name,
			StudentID: &studentID,
		})
		return err
	})
	if err == nil {
		return voter, nil
	}
	if !errors.Is(err, dto.ErrAlreadyExists) {
		return model.User{}, err
	}

	voter, err = tx.User().GetByStudentID(ctx, studentID)
	if errors.Is(err, dto.ErrNotFound) {
		return model.User{}, fmt.Errorf("%w: email %s belongs to another user", dto.ErrInvalidRequest, voterEmail(studentID))
	}
	return voter, err
}

func voterEmail(studentID string) string {
	return studentID + "@student.edu"
}

func (v *voteService) Remaining(ctx context.Context, voterStudentID string) (int, error) {
	voterStudentID = strings.TrimSpace(voterStudentID)
	if voterStudentID == "" {
		return 0, fmt.Errorf("%w: student id is required", dto.ErrInvalidRequest)
	}

	voter, err := v.repositories.User().GetByStudentID(ctx, voterStudentID)
	if err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			return VoteQuota, nil
		}
		return 0, err
	}

	count, err := v.repositories.Vote().CountByVoterID(ctx, voter.ID)
	if err != nil {
		return 0, err
	}
	return max(0, VoteQuota-int(count)), nil
}

func (v *voteService) Delete(ctx context.Context, voteID string) error {
	var deleted model.Vote
	err := v.repositories.Transaction(ctx, func(tx repository.Repositories) error {
		var err error
		deleted, err = tx.Vote().GetByID(ctx, voteID)
		if err != nil {
			return err
		}
		if err := tx.Vote().Delete(ctx, voteID); err != nil {
			return err
		}
		return tx.Submission().DecrementVoteCount(ctx, deleted.SubmissionID, 1)
	})
	if err != nil {
		return err
	}

	v.metrics.deleted.Inc()
	logrus.Infof("Vote %s on submission %s deleted", deleted.ID, deleted.SubmissionID)
	v.publish(ctx, VoteEvent{
		Type:         VoteEventDeleted,
		VoteID:       deleted.ID,
		SubmissionID: deleted.SubmissionID,
		VoterID:      deleted.VoterID,
	})

	return nil
}

func (v *voteService) Clear(ctx context.Context) (int64, error) {
	var removed int64
	err := v.repositories.Transaction(ctx, func(tx repository.Repositories) error {
		var err error
		removed, err = tx.Vote().DeleteAll(ctx)
		if err != nil {
			return err
		}
		return tx.Submission().ResetVoteCounts(ctx)
	})
	if err != nil {
		return 0, err
	}

	v.metrics.deleted.Add(float64(removed))
	logrus.Infof("Cleared %d votes", removed)
	v.publish(ctx, VoteEvent{
		Type:    VoteEventCleared,
		Removed: removed,
	})

	return removed, nil
}

func (v *voteService) ReleaseVoter(ctx context.Context, tx repository.Repositories, voterID string) (int64, error) {
	removed, err := tx.Vote().DeleteByVoter(ctx, voterID)
	if err != nil {
		return 0, err
	}

	var total int64
	// Sorted so concurrent releases take counter row locks in the same order.
	for _, submissionID := range slices.Sorted(maps.Keys(removed)) {
		n := removed[submissionID]
		if err := tx.Submission().DecrementVoteCount(ctx, submissionID, n); err != nil {
			return 0, err
		}
		total += int64(n)
	}

	return total, nil
}

func (v *voteService) ReleaseSubmissions(ctx context.Context, tx repository.Repositories, submissionIDs []string) (int64, error) {
	return tx.Vote().DeleteBySubmissions(ctx, submissionIDs)
}

func (v *voteService) List(ctx context.Context) ([]model.Vote, error) {
	return v.repositories.Vote().List(ctx)
}

func (v *voteService) Stats(ctx context.Context) (dto.VoteStatsResponse, error) {
	totalVotes, err := v.repositories.Vote().Count(ctx)
	if err != nil {
		return dto.VoteStatsResponse{}, err
	}
	uniqueVoters, err := v.repositories.Vote().CountDistinctVoters(ctx)
	if err != nil {
		return dto.VoteStatsResponse{}, err
	}
	submissionsWithVotes, err := v.repositories.Vote().CountDistinctSubmissions(ctx)
	if err != nil {
		return dto.VoteStatsResponse{}, err
	}
	totalSubmissions, err := v.repositories.Submission().Count(ctx)
	if err != nil {
		return dto.VoteStatsResponse{}, err
	}

	var average float64
	if totalSubmissions > 0 {
		average = float64(totalVotes) / float64(totalSubmissions)
	}

	return dto.VoteStatsResponse{
		TotalVotes:                totalVotes,
		UniqueVoters:              uniqueVoters,
		SubmissionsWithVotes:      submissionsWithVotes,
		AverageVotesPerSubmission: average,
	}, nil
}

func (v *voteService) publish(ctx context.Context, event VoteEvent) {
	event.OccurredAt = time.Now().UTC()
	eventJson, err := json.Marshal(event)
	if err != nil {
		logrus.Errorf("Error marshaling vote event: %v", err)
		return
	}

	err = v.rabbitClient.PublishMessage(ctx, event.Type, eventJson)
	if err != nil {
		logrus.Errorf("Error publishing vote event: %v", err)
	}
}
