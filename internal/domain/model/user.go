package model

import (
	"time"

	"github.com/iru21/datingapp/backend/internal/domain/enums"
)

type User struct {
	ID             int64        `json:"id"`
	Username       string       `json:"username"`
	FirstName      string       `json:"first_name"`
	LastName       string       `json:"last_name"`
	Gender         enums.Gender `json:"gender"`
	Age            int          `json:"age"`
	City           string       `json:"city"`
	TelegramChatID *int64       `json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}
