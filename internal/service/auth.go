package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/krakosik/symposium/internal/client"
	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/model"
	"github.com/krakosik/symposium/internal/repository"
	"github.com/sirupsen/logrus"
)

const (
	adminDisplayName = "System Administrator"
	adminStudentID   = "ADMIN001"
	adminEmailDomain = "admin.local"
)

type AuthService interface {
	Login(ctx context.Context, login, password string) (string, model.User, error)
	Authenticate(ctx context.Context, token string) (model.User, error)
}

type authService struct {
	userRepository      repository.UserRepository
	authClient          client.AuthClient
	tokenExpireVerifier client.TokenExpireVerifier
	adminLogin          string
	adminPassword       string
}

func newAuthService(userRepository repository.UserRepository, authClient client.AuthClient, verifier client.TokenExpireVerifier, config dto.Config) AuthService {
	return &authService{
		userRepository:      userRepository,
		authClient:          authClient,
		tokenExpireVerifier: verifier,
		adminLogin:          config.AdminLogin,
		adminPassword:       config.AdminPassword,
	}
}

func (a *authService) Login(ctx context.Context, login, password string) (string, model.User, error) {
	loginOK := subtle.ConstantTimeCompare([]byte(login), []byte(a.adminLogin))
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.adminPassword))
	if loginOK&passwordOK != 1 {
		return "", model.User{}, fmt.Errorf("%w: wrong login or password", dto.ErrInvalidCredentials)
	}

	admin, err := a.ensureAdminUser(ctx)
	if err != nil {
		return "", model.User{}, err
	}

	token, err := a.authClient.IssueToken(admin.ID, admin.Email, admin.IsAdmin)
	if err != nil {
		return "", model.User{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
	}

	logrus.Infof("Administrator %s logged in", admin.Email)
	return token, admin, nil
}

// ensureAdminUser returns the user backing the configured administrator,
// creating it on first login.
func (a *authService) ensureAdminUser(ctx context.Context) (model.User, error) {
	email := strings.ToLower(a.adminLogin) + "@" + adminEmailDomain

	admin, err := a.userRepository.GetByEmail(ctx, email)
	if err == nil {
		return admin, nil
	}
	if !errors.Is(err, dto.ErrNotFound) {
		return model.User{}, err
	}

	name := adminDisplayName
	studentID := adminStudentID
	admin, err = a.userRepository.Create(ctx, model.User{
		Email:     email,
		Name:      &name,
		StudentID: &studentID,
		IsAdmin:   true,
	})
	if errors.Is(err, dto.ErrAlreadyExists) {
		// Either another login created it first or a voter already holds
		// the reserved student id.
		admin, err = a.userRepository.GetByEmail(ctx, email)
		if err == nil || !errors.Is(err, dto.ErrNotFound) {
			return admin, err
		}
		admin, err = a.userRepository.Create(ctx, model.User{
			Email:   email,
			Name:    &name,
			IsAdmin: true,
		})
	}
	if err != nil {
		return model.User{}, err
	}

	logrus.Infof("Created administrator user %s", email)
	return admin, nil
}

func (a *authService) Authenticate(ctx context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, fmt.Errorf("%w: missing token", dto.ErrNotAuthorized)
	}

	claims, err := a.authClient.VerifyToken(token)
	if err != nil {
		if a.tokenExpireVerifier(err) {
			return model.User{}, fmt.Errorf("%w: token expired", dto.ErrNotAuthorized)
		}
		return model.User{}, fmt.Errorf("%w: %v", dto.ErrNotAuthorized, err)
	}

	user, err := a.userRepository.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			return model.User{}, fmt.Errorf("%w: unknown subject", dto.ErrNotAuthorized)
		}
		return model.User{}, err
	}

	if !user.IsAdmin {
		return model.User{}, fmt.Errorf("%w: administrator privileges required", dto.ErrForbidden)
	}

	return user, nil
}
