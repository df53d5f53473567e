package model

import "strings"

type SubmissionType string

const (
	SubmissionTypePaper  SubmissionType = "PAPER"
	SubmissionTypePoster SubmissionType = "POSTER"
	SubmissionTypeDemo   SubmissionType = "DEMO"
)

// ParseSubmissionType accepts the type names case-insensitively; an empty
// value defaults to PAPER.
func ParseSubmissionType(s string) (SubmissionType, bool) {
	switch st := SubmissionType(strings.ToUpper(strings.TrimSpace(s))); st {
	case "":
		return SubmissionTypePaper, true
	case SubmissionTypePaper, SubmissionTypePoster, SubmissionTypeDemo:
		return st, true
	default:
		return "", false
	}
}
