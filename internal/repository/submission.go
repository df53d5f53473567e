package repository

import (
	"context"
	"fmt"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/model"
	"gorm.io/gorm"
)

// editableSubmissionColumns are always written by UpdateDetails. vote_count is
// absent: only the vote counter methods below may change it.
var editableSubmissionColumns = []string{
	"title", "description", "abstract", "keywords", "type",
	"author_name", "author_email", "author_student_id",
	"co_authors", "co_author_student_ids", "is_presented",
}

type SubmissionRepository interface {
	GetByID(ctx context.Context, id string) (model.Submission, error)
	Create(ctx context.Context, submission model.Submission) (model.Submission, error)
	UpdateDetails(ctx context.Context, submission model.Submission) error
	Delete(ctx context.Context, id string) error
	DeleteByAuthor(ctx context.Context, authorID string) (int64, error)
	List(ctx context.Context) ([]model.Submission, error)
	Leaderboard(ctx context.Context) ([]model.Submission, error)
	ListIDsByAuthor(ctx context.Context, authorID string) ([]string, error)

	IncrementVoteCount(ctx context.Context, id string) error
	DecrementVoteCount(ctx context.Context, id string, n int) error
	ResetVoteCounts(ctx context.Context) error

	Count(ctx context.Context) (int64, error)
	CountByAuthor(ctx context.Context) (map[string]int64, error)
	// CountByAuthorID feeds the submission count of a single user view.
	CountByAuthorID(ctx context.Context, authorID string) (int64, error)
}

type submission struct {
	db *gorm.DB
}

func newSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submission{
		db: db,
	}
}

func (s *submission) GetByID(ctx context.Context, id string) (model.Submission, error) {
	var submission model.Submission
	result := s.db.WithContext(ctx).Preload("Author").First(&submission, "id = ?", id)
	if result.Error != nil {
		return model.Submission{}, wrapError(result.Error)
	}

	return submission, nil
}

func (s *submission) Create(ctx context.Context, submission model.Submission) (model.Submission, error) {
	result := s.db.WithContext(ctx).Omit("Author", "Votes").Create(&submission)
	if result.Error != nil {
		return model.Submission{}, wrapError(result.Error)
	}

	return submission, nil
}

// UpdateDetails replaces the editable columns of a submission. The file
// reference is only written when the update carries it.
func (s *submission) UpdateDetails(ctx context.Context, submission model.Submission) error {
	columns := append([]string{}, editableSubmissionColumns...)
	if submission.FileURL != nil {
		columns = append(columns, "file_url")
	}
	if submission.FileName != nil {
		columns = append(columns, "file_name")
	}
	if submission.FileSize != nil {
		columns = append(columns, "file_size")
	}

	result := s.db.WithContext(ctx).
		Model(&model.Submission{ID: submission.ID}).
		Select(columns).
		Updates(&submission)
	if result.Error != nil {
		return wrapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: submission %s", dto.ErrNotFound, submission.ID)
	}

	return nil
}

func (s *submission) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&model.Submission{}, "id = ?", id)
	if result.Error != nil {
		return wrapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: submission %s", dto.ErrNotFound, id)
	}

	return nil
}

func (s *submission) DeleteByAuthor(ctx context.Context, authorID string) (int64, error) {
	result := s.db.WithContext(ctx).Delete(&model.Submission{}, "author_id = ?", authorID)
	if result.Error != nil {
		return 0, wrapError(result.Error)
	}

	return result.RowsAffected, nil
}

func (s *submission) List(ctx context.Context) ([]model.Submission, error) {
	var submissions []model.Submission
	result := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Votes").
		Order("created_at desc").
		Find(&submissions)
	if result.Error != nil {
		return nil, wrapError(result.Error)
	}

	return submissions, nil
}

func (s *submission) Leaderboard(ctx context.Context) ([]model.Submission, error) {
	var submissions []model.Submission
	result := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Votes").
		Order("vote_count desc").
		Order("created_at desc").
		Find(&submissions)
	if result.Error != nil {
		return nil, wrapError(result.Error)
	}

	return submissions, nil
}

func (s *submission) ListIDsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	var ids []string
	result := s.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("author_id = ?", authorID).
		Pluck("id", &ids)
	if result.Error != nil {
		return nil, wrapError(result.Error)
	}

	return ids, nil
}

func (s *submission) IncrementVoteCount(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("id = ?", id).
		UpdateColumn("vote_count", gorm.Expr("vote_count + ?", 1))
	if result.Error != nil {
		return wrapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: submission %s", dto.ErrNotFound, id)
	}

	return nil
}

// DecrementVoteCount lowers the counter by n but never below zero, even when
// the stored count is already inconsistent.
func (s *submission) DecrementVoteCount(ctx context.Context, id string, n int) error {
	result := s.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("id = ?", id).
		UpdateColumn("vote_count", gorm.Expr("CASE WHEN vote_count > ? THEN vote_count - ? ELSE 0 END", n, n))
	if result.Error != nil {
		return wrapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: submission %s", dto.ErrNotFound, id)
	}

	return nil
}

func (s *submission) ResetVoteCounts(ctx context.Context) error {
	result := s.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("vote_count <> ?", 0).
		UpdateColumn("vote_count", 0)
	if result.Error != nil {
		return wrapError(result.Error)
	}

	return nil
}

func (s *submission) Count(ctx context.Context) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&model.Submission{}).Count(&count)
	if result.Error != nil {
		return 0, wrapError(result.Error)
	}

	return count, nil
}

func (s *submission) CountByAuthor(ctx context.Context) (map[string]int64, error) {
	var rows []groupCount
	result := s.db.WithContext(ctx).
		Model(&model.Submission{}).
		Select("author_id AS owner_id, COUNT(*) AS total").
		Group("author_id").
		Scan(&rows)
	if result.Error != nil {
		return nil, wrapError(result.Error)
	}

	return groupCounts(rows), nil
}

func (s *submission) CountByAuthorID(ctx context.Context, authorID string) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&model.Submission{}).Where("author_id = ?", authorID).Count(&count)
	if result.Error != nil {
		return 0, wrapError(result.Error)
	}

	return count, nil
}

type groupCount struct {
	OwnerID string
	Total   int64
}

func groupCounts(rows []groupCount) map[string]int64 {
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.OwnerID] = row.Total
	}
	return counts
}
