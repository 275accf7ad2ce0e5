package model

import (
	"time"

	"github.com/iru21/datingapp/backend/internal/domain/enums"
)

type Notification struct {
	ID              int64                  `json:"id"`
	UserID          int64                  `json:"user_id"`
	Type            enums.NotificationType `json:"type"`
	Message         string                 `json:"message"`
	RelatedUserID   *int64                 `json:"related_user_id,omitempty"`
	RelatedEntityID *int64                 `json:"related_entity_id,omitempty"`
	IsRead          bool                   `json:"is_read"`
	CreatedAt       time.Time              `json:"created_at"`
}
