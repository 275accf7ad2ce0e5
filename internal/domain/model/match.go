package model

import "time"

// Match is stored with user_a_id < user_b_id so the unordered pair has a
// single canonical row; OtherUserID is always resolved per caller.
type Match struct {
	ID        int64     `json:"id"`
	UserAID   int64     `json:"user_a_id"`
	UserBID   int64     `json:"user_b_id"`
	IsActive  bool      `json:"is_active"`
	MatchedAt time.Time `json:"matched_at"`
}

func (m Match) HasParticipant(userID int64) bool {
	return m.UserAID == userID || m.UserBID == userID
}

func (m Match) OtherParticipant(userID int64) int64 {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}
