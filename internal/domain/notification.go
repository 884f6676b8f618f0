package domain

import (
	"context"
	"time"
)

type NotificationKind string

const (
	NotificationInfo    NotificationKind = "info"
	NotificationSuccess NotificationKind = "success"
	NotificationWarning NotificationKind = "warning"
)

type Notification struct {
	MemberID  string
	Kind      NotificationKind
	Title     string
	Message   string
	CreatedAt time.Time
}

// Notifier delivery is best-effort; callers log failures and move on.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
