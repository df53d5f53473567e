package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Vote struct {
	ID             string      `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt      time.Time   `json:"createdAt"`
	VoterID        string      `gorm:"size:36;not null;uniqueIndex:idx_votes_voter_submission" json:"voterId"`
	SubmissionID   string      `gorm:"size:36;not null;uniqueIndex:idx_votes_voter_submission;index" json:"submissionId"`
	VoterStudentID string      `gorm:"not null" json:"voterStudentId"`
	Voter          *User       `gorm:"constraint:OnDelete:CASCADE" json:"voter,omitempty"`
	Submission     *Submission `gorm:"constraint:OnDelete:CASCADE" json:"submission,omitempty"`
}

func (v *Vote) BeforeCreate(*gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
