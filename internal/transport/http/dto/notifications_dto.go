package dto

import "time"

type NotificationResponse struct {
	ID              int64     `json:"id"`
	Type            string    `json:"type"`
	Message         string    `json:"message"`
	RelatedUserID   *int64    `json:"related_user_id,omitempty"`
	RelatedEntityID *int64    `json:"related_entity_id,omitempty"`
	IsRead          bool      `json:"is_read"`
	CreatedAt       time.Time `json:"created_at"`
}

type NotificationsResponse struct {
	Items []NotificationResponse `json:"items"`
}

type MarkedResponse struct {
	Marked int64 `json:"marked"`
}
