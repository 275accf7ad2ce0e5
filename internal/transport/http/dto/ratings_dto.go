package dto

import "time"

type RateRequest struct {
	RatedUserID int64  `json:"rated_user_id"`
	Type        string `json:"type"`
}

type RateResponse struct {
	RatingCreated bool  `json:"rating_created"`
	MatchCreated  bool  `json:"match_created"`
	MatchID       int64 `json:"match_id,omitempty"`
}

type RatingResponse struct {
	ID          int64     `json:"id"`
	RaterID     int64     `json:"rater_id"`
	RatedUserID int64     `json:"rated_user_id"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
}

type MutualLikeResponse struct {
	Mutual bool `json:"mutual"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}
