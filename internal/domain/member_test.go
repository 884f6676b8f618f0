package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHoldingTankOverrideResolve(t *testing.T) {
	assert.True(t, HoldingTankEnabled.Resolve(false))
	assert.False(t, HoldingTankDisabled.Resolve(true))
	assert.True(t, HoldingTankSystem.Resolve(true))
	assert.False(t, HoldingTankOverride("").Resolve(false))
}

func TestParseSpilloverStrategy(t *testing.T) {
	for _, s := range []string{"", "extreme_left", "extreme_right", "weaker_leg", "alternate", "balanced"} {
		_, err := ParseSpilloverStrategy(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseSpilloverStrategy("zigzag")
	assert.ErrorIs(t, err, ErrInvalidStrategy)
}

func TestMemberSides(t *testing.T) {
	m := &Member{ID: "p", LeftChildID: "a"}

	side, ok := m.SideOf("a")
	assert.True(t, ok)
	assert.Equal(t, SideLeft, side)

	_, ok = m.SideOf("stranger")
	assert.False(t, ok)
	_, ok = m.SideOf("")
	assert.False(t, ok)

	free, ok := m.FreeSide()
	assert.True(t, ok)
	assert.Equal(t, SideRight, free)

	m.RightChildID = "b"
	_, ok = m.FreeSide()
	assert.False(t, ok)
	assert.Equal(t, "b", m.ChildOn(SideRight))
	assert.Equal(t, SideLeft, SideRight.Opposite())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrSlotTaken))
	assert.True(t, IsRetryable(ErrTransient))
	assert.False(t, IsRetryable(ErrAlreadyPlaced))
	assert.False(t, IsRetryable(nil))
}
