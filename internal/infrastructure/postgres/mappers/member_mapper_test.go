package mappers

import (
	"testing"

	"github.com/LavaJover/shvark-binary-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGORMMember_EmptyUsernameIsNull(t *testing.T) {
	first := ToGORMMember(&domain.Member{ID: "m1"})
	second := ToGORMMember(&domain.Member{ID: "m2"})

	assert.Nil(t, first.Username)
	assert.Nil(t, second.Username, "unnamed members must not collide on the unique index")
	assert.Equal(t, "", ToDomainMember(first).Username)
}

func TestToGORMMember_KeepsUsernameAndLinks(t *testing.T) {
	model := ToGORMMember(&domain.Member{
		ID:        "m1",
		Username:  "alice",
		SponsorID: "s1",
		ParentID:  "p1",
		Position:  domain.SideLeft,
	})

	require.NotNil(t, model.Username)
	assert.Equal(t, "alice", *model.Username)
	assert.Nil(t, model.LeftChildID)

	back := ToDomainMember(model)
	assert.Equal(t, "alice", back.Username)
	assert.Equal(t, "s1", back.SponsorID)
	assert.Equal(t, "p1", back.ParentID)
	assert.Equal(t, domain.SideLeft, back.Position)
}
