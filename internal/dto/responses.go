package dto

import "github.com/krakosik/symposium/internal/model"

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CastVoteResponse struct {
	Message        string `json:"message"`
	RemainingVotes int    `json:"remainingVotes"`
}

type RemainingVotesResponse struct {
	RemainingVotes int `json:"remainingVotes"`
}

type UserView struct {
	ID      string  `json:"id"`
	Email   string  `json:"email"`
	Name    *string `json:"name"`
	IsAdmin bool    `json:"isAdmin"`
}

func NewUserView(u model.User) UserView {
	return UserView{ID: u.ID, Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin}
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type VerifyResponse struct {
	Valid bool     `json:"valid"`
	User  UserView `json:"user"`
}

type UserCounts struct {
	Submissions int64 `json:"submissions"`
	Votes       int64 `json:"votes"`
}

type UserWithCounts struct {
	model.User
	Count UserCounts `json:"_count"`
}

type StatsResponse struct {
	Users       int64 `json:"users"`
	Submissions int64 `json:"submissions"`
	Votes       int64 `json:"votes"`
}

type VoteStatsResponse struct {
	TotalVotes                int64   `json:"totalVotes"`
	UniqueVoters              int64   `json:"uniqueVoters"`
	SubmissionsWithVotes      int64   `json:"submissionsWithVotes"`
	AverageVotesPerSubmission float64 `json:"averageVotesPerSubmission"`
}

type UploadResponse struct {
	Message  string `json:"message"`
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
}

type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
