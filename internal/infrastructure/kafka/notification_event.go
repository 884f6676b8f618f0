package publisher

import "time"

type NotificationEvent struct {
	MemberID  string    `json:"member_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
