package enums

type NotificationType string

const (
	NotificationTypeNewMatch   NotificationType = "NEW_MATCH"
	NotificationTypeNewMessage NotificationType = "NEW_MESSAGE"
)
