package dto

type LinkTelegramRequest struct {
	ChatID int64 `json:"chat_id"`
}
