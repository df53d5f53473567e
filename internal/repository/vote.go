package repository

import (
	"context"
	"fmt"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/model"
	"gorm.io/gorm"
)

type VoteRepository interface {
	GetByID(ctx context.Context, id string) (model.Vote, error)
	GetByVoterAndSubmission(ctx context.Context, voterID, submissionID string) (model.Vote, error)
	Create(ctx context.Context, vote model.Vote) (model.Vote, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	DeleteBySubmissions(ctx context.Context, submissionIDs []string) (int64, error)
	// DeleteByVoter removes every vote cast by the voter and reports how many
	// votes were removed from each submission.
	DeleteByVoter(ctx context.Context, voterID string) (map[string]int, error)
	List(ctx context.Context) ([]model.Vote, error)

	Count(ctx context.Context) (int64, error)
	CountByVoterID(ctx context.Context, voterID string) (int64, error)
	// CountBySubmissionID counts live votes for one submission; tests use it to
	// check the stored counter against them.
	CountBySubmissionID(ctx context.Context, submissionID string) (int64, error)
	CountByVoter(ctx context.Context) (map[string]int64, error)
	CountDistinctVoters(ctx context.Context) (int64, error)
	CountDistinctSubmissions(ctx context.Context) (int64, error)
}

type vote struct {
	db *gorm.DB
}

func newVoteRepository(db *gorm.DB) VoteRepository {
	return &vote{
		db: db,
	}
}

func (v *vote) GetByID(ctx context.Context, id string) (model.Vote, error) {
	var vote model.Vote
	result := v.db.WithContext(ctx).First(&vote, "id = ?", id)
	if result.Error != nil {
		return model.Vote{}, wrapError(result.Error)
	}

	return vote, nil
}

func (v *vote) GetByVoterAndSubmission(ctx context.Context, voterID, submissionID string) (model.Vote, error) {
	var vote model.Vote
	result := v.db.WithContext(ctx).First(&vote, "voter_id = ? AND submission_id = ?", voterID, submissionID)
	if result.Error != nil {
		return model.Vote{}, wrapError(result.Error)
	}

	return vote, nil
}

func (v *vote) Create(ctx context.Context, vote model.Vote) (model.Vote, error) {
	result := v.db.WithContext(ctx).Omit("Voter", "Submission").Create(&vote)
	if result.Error != nil {
		return model.Vote{}, wrapError(result.Error)
	}

	return vote, nil
}

func (v *vote) Delete(ctx context.Context, id string) error {
	result := v.db.WithContext(ctx).Delete(&model.Vote{}, "id = ?", id)
	if result.Error != nil {
		return wrapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: vote %s", dto.ErrNotFound, id)
	}

	return nil
}

func (v *vote) DeleteAll(ctx context.Context) (int64, error) {
	result := v.db.WithContext(ctx).Where("1 = 1").Delete(&model.Vote{})
	if result.Error != nil {
		return 0, wrapError(result.Error)
	}

	return result.RowsAffected, nil
}

func (v *vote) DeleteBySubmissions(ctx context.Context, submissionIDs []string) (int64, error) {
	if len(submissionIDs) == 0 {
		return 0, nil
	}
	result := v.db.WithContext(ctx).Delete(&model.Vote{}, "submission_id IN ?", submissionIDs)
	if result.Error != nil {
		return 0, wrapError(result.Error)
	}

	return result.RowsAffected, nil
}

func (v *vote) DeleteByVoter(ctx context.Context, voterID string) (map[string]int, error) {
	var rows []groupCount
	result := v.db.WithContext(ctx).
		Model(&model.Vote{}).
		Select("submission_id AS owner_id, COUNT(*) AS total").
		Where("voter_id = ?", voterID).
		Group("submission_id").
		Scan(&rows)
	if result.Error != nil {
		return nil, wrapError(result.Error)
	}

	result = v.db.WithContext(ctx).Delete(&model.Vote{}, "voter_id = ?", voterID)
	if result.Error != nil {
		return nil, wrapError(result.Error)
	}

	removed := make(map[string]int, len(rows))
	for _, row := range rows {
		removed[row.OwnerID] = int(row.Total)
	}
	return removed, nil
}

func (v *vote) List(ctx context.Context) ([]model.Vote, error) {
	var votes []model.Vote
	result := v.db.WithContext(ctx).
		Preload("Voter").
		Preload("Submission").
		Order("created_at desc").
		Find(&votes)
	if result.Error != nil {
		return nil, wrapError(result.Error)
	}

	return votes, nil
}

func (v *vote) Count(ctx context.Context) (int64, error) {
	var count int64
	result := v.db.WithContext(ctx).Model(&model.Vote{}).Count(&count)
	if result.Error != nil {
		return 0, wrapError(result.Error)
	}

	return count, nil
}

func (v *vote) CountByVoterID(ctx context.Context, voterID string) (int64, error) {
	var count int64
	result := v.db.WithContext(ctx).Model(&model.Vote{}).Where("voter_id = ?", voterID).Count(&count)
	if result.Error != nil {
		return 0, wrapError(result.Error)
	}

	return count, nil
}

func (v *vote) CountBySubmissionID(ctx context.Context, submissionID string) (int64, error) {
	var count int64
	result := v.db.WithContext(ctx).Model(&model.Vote{}).Where("submission_id = ?", submissionID).Count(&count)
	if result.Error != nil {
		return 0, wrapError(result.Error)
	}

	return count, nil
}

func (v *vote) CountByVoter(ctx context.Context) (map[string]int64, error) {
	var rows []groupCount
	result := v.db.WithContext(ctx).
		Model(&model.Vote{}).
		Select("voter_id AS owner_id, COUNT(*) AS total").
		Group("voter_id").
		Scan(&rows)
	if result.Error != nil {
		return nil, wrapError(result.Error)
	}

	return groupCounts(rows), nil
}

func (v *vote) CountDistinctVoters(ctx context.Context) (int64, error) {
	var count int64
	result := v.db.WithContext(ctx).Model(&model.Vote{}).Distinct("voter_id").Count(&count)
	if result.Error != nil {
		return 0, wrapError(result.Error)
	}

	return count, nil
}

func (v *vote) CountDistinctSubmissions(ctx context.Context) (int64, error) {
	var count int64
	result := v.db.WithContext(ctx).Model(&model.Vote{}).Distinct("submission_id").Count(&count)
	if result.Error != nil {
		return 0, wrapError(result.Error)
	}

	return count, nil
}
