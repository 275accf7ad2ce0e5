package dto

import "time"

type MatchItemResponse struct {
	ID          int64     `json:"id"`
	OtherUserID int64     `json:"other_user_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Age         int       `json:"age"`
	City        string    `json:"city"`
	IsActive    bool      `json:"is_active"`
	MatchedAt   time.Time `json:"matched_at"`
}

type MatchesResponse struct {
	Items []MatchItemResponse `json:"items"`
}

type MatchResponse struct {
	ID          int64     `json:"id"`
	OtherUserID int64     `json:"other_user_id"`
	IsActive    bool      `json:"is_active"`
	MatchedAt   time.Time `json:"matched_at"`
}
