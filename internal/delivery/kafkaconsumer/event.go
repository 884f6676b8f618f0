package kafkaconsumer

import "time"

type VolumeEventType string

const (
	VolumeEventActivation VolumeEventType = "activation"
	VolumeEventPurchase   VolumeEventType = "purchase"
	VolumeEventPlacement  VolumeEventType = "placement"
)

// VolumeEvent is what the order and admin services emit for the engine.
type VolumeEvent struct {
	EventID        string          `json:"event_id"`
	Type           VolumeEventType `json:"type" validate:"required,oneof=activation purchase placement"`
	MemberID       string          `json:"member_id" validate:"required"`
	PV             float64         `json:"pv" validate:"gte=0"`
	OrderAmount    float64         `json:"order_amount" validate:"gte=0"`
	Strategy       string          `json:"strategy,omitempty"`
	TargetParentID string          `json:"target_parent_id,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}
