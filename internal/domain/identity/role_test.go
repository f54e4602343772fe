package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_AtLeast(t *testing.T) {
	assert.True(t, RoleTeamLeader.AtLeast(RoleSquadLeader))
	assert.True(t, RoleTeamLeader.AtLeast(RoleTeamLeader))
	assert.False(t, RoleSquadLeader.AtLeast(RoleTeamLeader))
	assert.True(t, RoleAdmin.AtLeast(RoleWarehouseAdmin))
	assert.False(t, RoleUser.AtLeast(RoleSquadLeader))

	// unknown roles rank below everything
	assert.False(t, Role("MYSTERY").AtLeast(RoleUser))
	assert.True(t, RoleUser.AtLeast(Role("MYSTERY")))
}

func TestRole_Predicates(t *testing.T) {
	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleWarehouseAdmin.IsAdmin())

	assert.True(t, RoleSquadLeader.HasApprovalAuthority())
	assert.False(t, RoleUser.HasApprovalAuthority())

	assert.True(t, RoleUser.IsValid())
	assert.False(t, Role("MYSTERY").IsValid())
}
