package document

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warehouse/backend/internal/domain/identity"
)

func TestApprovalStatus_Chain(t *testing.T) {
	t.Run("happy path walks the full chain", func(t *testing.T) {
		status := StatusDraft
		chain := []ApprovalStatus{StatusPending, StatusSquadApproved, StatusTeamApproved, StatusApproved}

		for _, want := range chain {
			status = status.Next()
			assert.Equal(t, want, status)
		}
	})

	t.Run("legacy IN_PROGRESS advances like PENDING", func(t *testing.T) {
		assert.Equal(t, StatusSquadApproved, StatusInProgress.Next())
	})

	t.Run("terminal statuses return themselves", func(t *testing.T) {
		for _, status := range []ApprovalStatus{StatusExecuted, StatusRejected, StatusCancelled, StatusExpired} {
			assert.Equal(t, status, status.Next())
		}
	})
}

func TestApprovalStatus_Predicates(t *testing.T) {
	t.Run("can approve only at approval gates", func(t *testing.T) {
		assert.True(t, StatusPending.CanApprove())
		assert.True(t, StatusSquadApproved.CanApprove())
		assert.True(t, StatusTeamApproved.CanApprove())
		assert.True(t, StatusInProgress.CanApprove())

		assert.False(t, StatusDraft.CanApprove())
		assert.False(t, StatusApproved.CanApprove())
		assert.False(t, StatusExecuted.CanApprove())
		assert.False(t, StatusRejected.CanApprove())
	})

	t.Run("can execute only when fully approved", func(t *testing.T) {
		assert.True(t, StatusApproved.CanExecute())

		assert.False(t, StatusPending.CanExecute())
		assert.False(t, StatusTeamApproved.CanExecute())
		assert.False(t, StatusExecuted.CanExecute())
	})

	t.Run("can cancel before execution", func(t *testing.T) {
		assert.True(t, StatusDraft.CanCancel())
		assert.True(t, StatusPending.CanCancel())
		assert.True(t, StatusSquadApproved.CanCancel())
		assert.True(t, StatusTeamApproved.CanCancel())
		assert.True(t, StatusApproved.CanCancel())

		assert.False(t, StatusExecuted.CanCancel())
		assert.False(t, StatusRejected.CanCancel())
		assert.False(t, StatusCancelled.CanCancel())
		assert.False(t, StatusExpired.CanCancel())
	})

	t.Run("terminal statuses", func(t *testing.T) {
		assert.True(t, StatusExecuted.IsTerminal())
		assert.True(t, StatusRejected.IsTerminal())
		assert.True(t, StatusCancelled.IsTerminal())
		assert.True(t, StatusExpired.IsTerminal())

		assert.False(t, StatusDraft.IsTerminal())
		assert.False(t, StatusApproved.IsTerminal())
	})

	t.Run("validity", func(t *testing.T) {
		assert.True(t, StatusDraft.IsValid())
		assert.True(t, StatusInProgress.IsValid())
		assert.False(t, ApprovalStatus("UNKNOWN").IsValid())
	})
}

func TestApprovalStatus_RoleMayApprove(t *testing.T) {
	t.Run("each gate requires its minimum tier", func(t *testing.T) {
		assert.False(t, StatusPending.RoleMayApprove(identity.RoleUser))
		assert.True(t, StatusPending.RoleMayApprove(identity.RoleSquadLeader))
		assert.True(t, StatusPending.RoleMayApprove(identity.RoleTeamLeader))

		assert.False(t, StatusSquadApproved.RoleMayApprove(identity.RoleSquadLeader))
		assert.True(t, StatusSquadApproved.RoleMayApprove(identity.RoleTeamLeader))
		assert.True(t, StatusSquadApproved.RoleMayApprove(identity.RoleWarehouseAdmin))

		assert.False(t, StatusTeamApproved.RoleMayApprove(identity.RoleTeamLeader))
		assert.True(t, StatusTeamApproved.RoleMayApprove(identity.RoleWarehouseAdmin))
	})

	t.Run("admin clears every gate", func(t *testing.T) {
		assert.True(t, StatusPending.RoleMayApprove(identity.RoleAdmin))
		assert.True(t, StatusSquadApproved.RoleMayApprove(identity.RoleAdmin))
		assert.True(t, StatusTeamApproved.RoleMayApprove(identity.RoleAdmin))
		assert.True(t, StatusInProgress.RoleMayApprove(identity.RoleAdmin))
	})

	t.Run("no role approves outside the gates", func(t *testing.T) {
		assert.False(t, StatusDraft.RoleMayApprove(identity.RoleAdmin))
		assert.False(t, StatusApproved.RoleMayApprove(identity.RoleAdmin))
		assert.False(t, StatusExecuted.RoleMayApprove(identity.RoleWarehouseAdmin))
	})

	t.Run("legacy IN_PROGRESS uses the first gate", func(t *testing.T) {
		assert.False(t, StatusInProgress.RoleMayApprove(identity.RoleUser))
		assert.True(t, StatusInProgress.RoleMayApprove(identity.RoleSquadLeader))
	})
}

func TestBusinessType_Direction(t *testing.T) {
	cases := []struct {
		businessType BusinessType
		direction    EffectDirection
	}{
		{BusinessPurchaseIn, EffectInbound},
		{BusinessReturnIn, EffectInbound},
		{BusinessTransferIn, EffectInbound},
		{BusinessInventoryGain, EffectInbound},
		{BusinessOtherIn, EffectInbound},
		{BusinessSaleOut, EffectOutbound},
		{BusinessTransferOut, EffectOutbound},
		{BusinessInventoryLoss, EffectOutbound},
		{BusinessDamageOut, EffectOutbound},
		{BusinessOtherOut, EffectOutbound},
		{BusinessWarehouseTransfer, EffectTransfer},
		{BusinessRegularCheck, EffectStocktake},
		{BusinessSpotCheck, EffectStocktake},
		{BusinessAnnualCheck, EffectStocktake},
	}

	for _, tc := range cases {
		t.Run(tc.businessType.String(), func(t *testing.T) {
			assert.Equal(t, tc.direction, tc.businessType.Direction())
			assert.True(t, tc.businessType.IsValid())
		})
	}

	t.Run("unknown type", func(t *testing.T) {
		unknown := BusinessType("SOMETHING_ELSE")
		assert.False(t, unknown.IsValid())
		assert.Equal(t, EffectUnknown, unknown.Direction())
	})
}
