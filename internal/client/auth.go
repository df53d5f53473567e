package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims is the payload of an administrator credential.
type Claims struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

type AuthClient interface {
	IssueToken(userID, email string, isAdmin bool) (string, error)
	VerifyToken(token string) (*Claims, error)
}

type TokenExpireVerifier func(err error) bool

func IsTokenExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

type jwtAuthClient struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTAuthClient(secret string, ttl time.Duration) AuthClient {
	return &jwtAuthClient{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (j *jwtAuthClient) IssueToken(userID, email string, isAdmin bool) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func (j *jwtAuthClient) VerifyToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
