package dto

import (
	"fmt"
	"net/mail"
	"strings"
)

// Validator is implemented by every request body accepted over HTTP. Validate
// trims surrounding whitespace in place before checking required fields.
type Validator interface {
	Validate() error
}

type CastVoteRequest struct {
	SubmissionID   string `json:"submissionId"`
	VoterStudentID string `json:"voterStudentId"`
	VoterName      string `json:"voterName"`
}

func (r *CastVoteRequest) Validate() error {
	r.SubmissionID = strings.TrimSpace(r.SubmissionID)
	r.VoterStudentID = strings.TrimSpace(r.VoterStudentID)
	r.VoterName = strings.TrimSpace(r.VoterName)
	if r.SubmissionID == "" || r.VoterStudentID == "" || r.VoterName == "" {
		return fmt.Errorf("%w: submission id, voter student id and voter name are required", ErrInvalidRequest)
	}
	return nil
}

type RemainingVotesRequest struct {
	VoterStudentID string `json:"voterStudentId"`
}

func (r *RemainingVotesRequest) Validate() error {
	r.VoterStudentID = strings.TrimSpace(r.VoterStudentID)
	if r.VoterStudentID == "" {
		return fmt.Errorf("%w: student id is required", ErrInvalidRequest)
	}
	return nil
}

type SubmissionRequest struct {
	Title              string  `json:"title"`
	Description        *string `json:"description"`
	Type               string  `json:"type"`
	AuthorName         string  `json:"authorName"`
	AuthorEmail        string  `json:"authorEmail"`
	AuthorStudentID    *string `json:"authorStudentId"`
	CoAuthors          *string `json:"coAuthors"`
	CoAuthorStudentIDs *string `json:"coAuthorStudentIds"`
	Abstract           *string `json:"abstract"`
	Keywords           *string `json:"keywords"`
	FileURL            *string `json:"fileUrl"`
	FileName           *string `json:"fileName"`
	FileSize           *int64  `json:"fileSize"`
}

func (r *SubmissionRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.AuthorName = strings.TrimSpace(r.AuthorName)
	r.AuthorEmail = strings.ToLower(strings.TrimSpace(r.AuthorEmail))
	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
	r.AuthorStudentID = trimOptional(r.AuthorStudentID)

	if r.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	if r.AuthorName == "" {
		return fmt.Errorf("%w: author name is required", ErrInvalidRequest)
	}
	if err := validateEmail(r.AuthorEmail); err != nil {
		return err
	}
	if r.FileSize != nil && *r.FileSize < 0 {
		return fmt.Errorf("%w: file size must not be negative", ErrInvalidRequest)
	}
	return nil
}

type AdminSubmissionRequest struct {
	SubmissionRequest
	IsPresented *bool `json:"isPresented"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" || r.Password == "" {
		return fmt.Errorf("%w: login and password are required", ErrInvalidRequest)
	}
	return nil
}

type SetAdminRequest struct {
	IsAdmin *bool `json:"isAdmin"`
}

func (r *SetAdminRequest) Validate() error {
	if r.IsAdmin == nil {
		return fmt.Errorf("%w: isAdmin is required", ErrInvalidRequest)
	}
	return nil
}

type UpdateUserRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	StudentID *string `json:"studentId"`
	IsAdmin   *bool   `json:"isAdmin"`
}

func (r *UpdateUserRequest) Validate() error {
	if r.Name == nil && r.Email == nil && r.StudentID == nil && r.IsAdmin == nil {
		return fmt.Errorf("%w: nothing to update", ErrInvalidRequest)
	}
	r.Name = trimOptional(r.Name)
	r.StudentID = trimOptional(r.StudentID)
	if r.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*r.Email))
		if err := validateEmail(email); err != nil {
			return err
		}
		r.Email = &email
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidRequest)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email %q", ErrInvalidRequest, email)
	}
	return nil
}

// trimOptional trims s and collapses blank values to nil.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
