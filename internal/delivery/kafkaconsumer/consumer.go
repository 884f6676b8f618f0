package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/LavaJover/shvark-binary-engine/internal/usecase/activation"
	activationdto "github.com/LavaJover/shvark-binary-engine/internal/usecase/dto/activation"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var ErrUnknownEvent = errors.New("unknown volume event type")

type VolumeEventConsumer struct {
	subscriber domain.SubscriberPort
	activation activation.ActivationUsecase
	logger     *zap.Logger
	validate   *validator.Validate
	topic      string
	groupID    string
	running    atomic.Bool
}

func NewVolumeEventConsumer(
	subscriber domain.SubscriberPort,
	activationUsecase activation.ActivationUsecase,
	logger *zap.Logger,
	topic, groupID string,
) *VolumeEventConsumer {
	return &VolumeEventConsumer{
		subscriber: subscriber,
		activation: activationUsecase,
		logger:     logger,
		validate:   validator.New(),
		topic:      topic,
		groupID:    groupID,
	}
}

// Running reports whether the consume loop is attached to the topic.
func (c *VolumeEventConsumer) Running() bool {
	return c.running.Load()
}

// Run blocks until ctx is cancelled or the subscription channel closes.
// Bad events are logged and skipped; nothing is redelivered.
func (c *VolumeEventConsumer) Run(ctx context.Context) error {
	msgs, err := c.subscriber.Subscribe(ctx, c.topic, c.groupID)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", c.topic, err)
	}
	c.running.Store(true)
	defer c.running.Store(false)

	c.logger.Info("volume consumer started", zap.String("topic", c.topic), zap.String("group", c.groupID))
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := c.Handle(ctx, msg); err != nil {
				c.logger.Error("volume event failed",
					zap.ByteString("key", msg.Key),
					zap.Error(err),
				)
			}
		}
	}
}

func (c *VolumeEventConsumer) Handle(ctx context.Context, msg domain.Message) error {
	var event VolumeEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("decode volume event: %w", err)
	}
	if err := c.validate.Struct(event); err != nil {
		return fmt.Errorf("invalid volume event %s: %w", event.EventID, err)
	}

	log := c.logger.With(
		zap.String("event_id", event.EventID),
		zap.String("type", string(event.Type)),
		zap.String("member_id", event.MemberID),
	)

	switch event.Type {
	case VolumeEventActivation:
		out, err := c.activation.Activate(ctx, &activationdto.ActivateInput{
			MemberID:    event.MemberID,
			OrderAmount: event.OrderAmount,
		})
		if err != nil {
			return err
		}
		log.Info("member activated", zap.Bool("parked", out.Parked), zap.Bool("already_active", out.AlreadyActive))
		if event.PV > 0 && !out.AlreadyActive {
			return c.purchase(ctx, log, event)
		}
		return nil
	case VolumeEventPurchase:
		return c.purchase(ctx, log, event)
	case VolumeEventPlacement:
		out, err := c.activation.PlaceFromHoldingTank(ctx, &activationdto.HoldingTankPlacementInput{
			MemberID:       event.MemberID,
			Strategy:       domain.SpilloverStrategy(event.Strategy),
			TargetParentID: event.TargetParentID,
		})
		if errors.Is(err, domain.ErrAlreadyPlaced) {
			log.Warn("placement event for a placed member ignored")
			return nil
		}
		if err != nil {
			return err
		}
		log.Info("member placed from holding tank",
			zap.String("parent_id", out.Placement.ParentID),
			zap.String("position", string(out.Placement.Position)),
		)
		return nil
	default:
		return ErrUnknownEvent
	}
}

func (c *VolumeEventConsumer) purchase(ctx context.Context, log *zap.Logger, event VolumeEvent) error {
	if event.PV <= 0 {
		return domain.ErrInvalidAmount
	}
	res, err := c.activation.RecordPurchase(ctx, event.MemberID, event.PV)
	if err != nil {
		return err
	}
	log.Info("purchase volume recorded",
		zap.Float64("pv", event.PV),
		zap.Int("depth", res.PropagationDepth),
		zap.Int("credits", len(res.Credits)),
	)
	return nil
}
