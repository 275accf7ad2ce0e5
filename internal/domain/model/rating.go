package model

import (
	"time"

	"github.com/iru21/datingapp/backend/internal/domain/enums"
)

type Rating struct {
	ID          int64            `json:"id"`
	RaterID     int64            `json:"rater_id"`
	RatedUserID int64            `json:"rated_user_id"`
	Type        enums.RatingType `json:"type"`
	CreatedAt   time.Time        `json:"created_at"`
}
