package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Submission struct {
	ID                 string         `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	Title              string         `gorm:"not null" json:"title"`
	Description        *string        `json:"description"`
	Abstract           *string        `json:"abstract"`
	Keywords           *string        `json:"keywords"`
	Type               SubmissionType `gorm:"size:16;not null" json:"type"`
	AuthorName         string         `gorm:"not null" json:"authorName"`
	AuthorEmail        string         `gorm:"not null" json:"authorEmail"`
	AuthorStudentID    *string        `json:"authorStudentId"`
	CoAuthors          *string        `json:"coAuthors"`
	CoAuthorStudentIDs *string        `json:"coAuthorStudentIds"`
	FileURL            *string        `json:"fileUrl"`
	FileName           *string        `json:"fileName"`
	FileSize           *int64         `json:"fileSize"`
	VoteCount          int            `gorm:"not null;default:0" json:"voteCount"`
	IsPresented        bool           `gorm:"not null;default:false" json:"isPresented"`
	AuthorID           string         `gorm:"size:36;not null;index" json:"authorId"`
	Author             *User          `gorm:"constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Votes              []Vote         `json:"votes,omitempty"`
}

func (s *Submission) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
