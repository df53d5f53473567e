package service

import (
	"github.com/krakosik/symposium/internal/client"
	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
)

type Services interface {
	Auth() AuthService
	User() UserService
	Submission() SubmissionService
	Vote() VoteService
	Upload() UploadService
	Stats() StatsService
}

type services struct {
	authService       AuthService
	userService       UserService
	submissionService SubmissionService
	voteService       VoteService
	uploadService     UploadService
	statsService      StatsService
}

func NewServices(repositories repository.Repositories, config dto.Config, clients client.Clients, registerer prometheus.Registerer) Services {
	voteService := newVoteService(repositories, clients.RabbitMQClient(), newVoteMetrics(registerer))
	userService := newUserService(repositories, voteService)
	return &services{
		authService:       newAuthService(repositories.User(), clients.AuthClient(), client.IsTokenExpired, config),
		userService:       userService,
		submissionService: newSubmissionService(repositories, userService, voteService),
		voteService:       voteService,
		uploadService:     newUploadService(clients.FileStore()),
		statsService:      newStatsService(repositories),
	}
}

func (s services) Auth() AuthService {
	return s.authService
}

func (s services) User() UserService {
	return s.userService
}

func (s services) Submission() SubmissionService {
	return s.submissionService
}

func (s services) Vote() VoteService {
	return s.voteService
}

func (s services) Upload() UploadService {
	return s.uploadService
}

func (s services) Stats() StatsService {
	return s.statsService
}
