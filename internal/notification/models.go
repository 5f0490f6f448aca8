// internal/notification/models.go

package notifications

// Priority of a push message
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// NotificationType identifies the template used for a notification
type NotificationType string

const (
	TypeGameInvitation NotificationType = "game_invitation"
	TypeGameCompleted  NotificationType = "game_completed"
	TypeDatePlanReady  NotificationType = "date_plan_ready"
)

// PushNotification is one message fanned out to device tokens
type PushNotification struct {
	Tokens      []string
	Title       string
	Body        string
	Data        map[string]string
	Sound       string
	Priority    Priority
	CollapseKey string
}

// SMSNotification is a single text message
type SMSNotification struct {
	To      string // E.164
	Message string
}

// EmailNotification is a single transactional email
type EmailNotification struct {
	To      string
	Subject string
	Body    string
	HTML    string
}
