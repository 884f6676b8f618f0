package kafkaconsumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/LavaJover/shvark-binary-engine/internal/usecase/commission"
	activationdto "github.com/LavaJover/shvark-binary-engine/internal/usecase/dto/activation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeActivation struct {
	activated   []activationdto.ActivateInput
	placed      []activationdto.HoldingTankPlacementInput
	purchases   map[string]float64
	activateOut *activationdto.ActivationOutput
	placeErr    error
}

func newFakeActivation() *fakeActivation {
	return &fakeActivation{
		purchases:   map[string]float64{},
		activateOut: &activationdto.ActivationOutput{},
	}
}

func (f *fakeActivation) Activate(ctx context.Context, input *activationdto.ActivateInput) (*activationdto.ActivationOutput, error) {
	f.activated = append(f.activated, *input)
	out := *f.activateOut
	out.MemberID = input.MemberID
	return &out, nil
}

func (f *fakeActivation) PlaceFromHoldingTank(ctx context.Context, input *activationdto.HoldingTankPlacementInput) (*activationdto.ActivationOutput, error) {
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	f.placed = append(f.placed, *input)
	return &activationdto.ActivationOutput{
		MemberID:  input.MemberID,
		Placement: &domain.Placement{ParentID: "p", Position: domain.SideLeft},
	}, nil
}

func (f *fakeActivation) RecordPurchase(ctx context.Context, memberID string, pv float64) (*commission.CascadeResult, error) {
	f.purchases[memberID] += pv
	return &commission.CascadeResult{Propagated: true, PropagationDepth: 2}, nil
}

func (f *fakeActivation) ListHoldingTank(ctx context.Context, sponsorID string) ([]*domain.Member, error) {
	return nil, nil
}

type chanSubscriber struct {
	ch chan domain.Message
}

func (s *chanSubscriber) Subscribe(ctx context.Context, topic, groupID string) (<-chan domain.Message, error) {
	return s.ch, nil
}

func message(t *testing.T, event VolumeEvent) domain.Message {
	t.Helper()
	v, err := json.Marshal(event)
	require.NoError(t, err)
	return domain.Message{Key: []byte(event.MemberID), Value: v}
}

func newConsumer(act *fakeActivation) *VolumeEventConsumer {
	return NewVolumeEventConsumer(&chanSubscriber{}, act, zap.NewNop(), "binary-volume-events", "binary-engine")
}

func TestHandle_Purchase(t *testing.T) {
	act := newFakeActivation()
	c := newConsumer(act)

	err := c.Handle(context.Background(), message(t, VolumeEvent{EventID: "e1", Type: VolumeEventPurchase, MemberID: "m1", PV: 120}))
	require.NoError(t, err)
	assert.Equal(t, 120.0, act.purchases["m1"])
}

func TestHandle_PurchaseWithoutPV(t *testing.T) {
	c := newConsumer(newFakeActivation())

	err := c.Handle(context.Background(), message(t, VolumeEvent{Type: VolumeEventPurchase, MemberID: "m1"}))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestHandle_ActivationByOrderRecordsVolume(t *testing.T) {
	act := newFakeActivation()
	c := newConsumer(act)

	err := c.Handle(context.Background(), message(t, VolumeEvent{
		Type: VolumeEventActivation, MemberID: "m1", OrderAmount: 200, PV: 80,
	}))
	require.NoError(t, err)
	require.Len(t, act.activated, 1)
	assert.Equal(t, 200.0, act.activated[0].OrderAmount)
	assert.Equal(t, 80.0, act.purchases["m1"])
}

func TestHandle_RepeatedActivationSkipsVolume(t *testing.T) {
	act := newFakeActivation()
	act.activateOut = &activationdto.ActivationOutput{AlreadyActive: true}
	c := newConsumer(act)

	err := c.Handle(context.Background(), message(t, VolumeEvent{
		Type: VolumeEventActivation, MemberID: "m1", OrderAmount: 200, PV: 80,
	}))
	require.NoError(t, err)
	assert.Empty(t, act.purchases)
}

func TestHandle_Placement(t *testing.T) {
	act := newFakeActivation()
	c := newConsumer(act)

	err := c.Handle(context.Background(), message(t, VolumeEvent{
		Type: VolumeEventPlacement, MemberID: "m1", Strategy: "extreme_left", TargetParentID: "root",
	}))
	require.NoError(t, err)
	require.Len(t, act.placed, 1)
	assert.Equal(t, domain.SpilloverStrategy("extreme_left"), act.placed[0].Strategy)
	assert.Equal(t, "root", act.placed[0].TargetParentID)
}

func TestHandle_PlacementOfPlacedMemberIgnored(t *testing.T) {
	act := newFakeActivation()
	act.placeErr = domain.ErrAlreadyPlaced
	c := newConsumer(act)

	err := c.Handle(context.Background(), message(t, VolumeEvent{Type: VolumeEventPlacement, MemberID: "m1"}))
	assert.NoError(t, err)
}

func TestHandle_RejectsMalformedEvents(t *testing.T) {
	c := newConsumer(newFakeActivation())

	assert.Error(t, c.Handle(context.Background(), domain.Message{Value: []byte("{not json")}))
	assert.Error(t, c.Handle(context.Background(), message(t, VolumeEvent{Type: "refund", MemberID: "m1"})))
	assert.Error(t, c.Handle(context.Background(), message(t, VolumeEvent{Type: VolumeEventPurchase, PV: 10})))
}

func TestRun_ConsumesUntilChannelCloses(t *testing.T) {
	act := newFakeActivation()
	sub := &chanSubscriber{ch: make(chan domain.Message, 3)}
	c := NewVolumeEventConsumer(sub, act, zap.NewNop(), "topic", "group")

	sub.ch <- message(t, VolumeEvent{Type: VolumeEventPurchase, MemberID: "a", PV: 10})
	sub.ch <- domain.Message{Value: []byte("garbage")}
	sub.ch <- message(t, VolumeEvent{Type: VolumeEventPurchase, MemberID: "b", PV: 5, OccurredAt: time.Now()})
	close(sub.ch)

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, 10.0, act.purchases["a"])
	assert.Equal(t, 5.0, act.purchases["b"])
	assert.False(t, c.Running())
}
