package model

import "github.com/iru21/datingapp/backend/internal/domain/enums"

type SearchPreference struct {
	UserID          int64        `json:"user_id"`
	PreferredGender enums.Gender `json:"preferred_gender"`
	MinAge          int          `json:"min_age"`
	MaxAge          int          `json:"max_age"`
}
