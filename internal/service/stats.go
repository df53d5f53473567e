package service

import (
	"context"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/repository"
)

type StatsService interface {
	Overview(ctx context.Context) (dto.StatsResponse, error)
	Health(ctx context.Context) error
}

type statsService struct {
	repositories repository.Repositories
}

func newStatsService(repositories repository.Repositories) StatsService {
	return &statsService{repositories: repositories}
}

func (s *statsService) Overview(ctx context.Context) (dto.StatsResponse, error) {
	users, err := s.repositories.User().Count(ctx)
	if err != nil {
		return dto.StatsResponse{}, err
	}
	submissions, err := s.repositories.Submission().Count(ctx)
	if err != nil {
		return dto.StatsResponse{}, err
	}
	votes, err := s.repositories.Vote().Count(ctx)
	if err != nil {
		return dto.StatsResponse{}, err
	}

	return dto.StatsResponse{
		Users:       users,
		Submissions: submissions,
		Votes:       votes,
	}, nil
}

func (s *statsService) Health(ctx context.Context) error {
	return s.repositories.Ping(ctx)
}
