package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBillStatus(t *testing.T) {
	cases := map[string]BillStatus{
		"":                   BillStatusNone,
		"none":               BillStatusNone,
		"To Bill":            BillStatusToBill,
		"to-bill":            BillStatusToBill,
		"Pending Collection": BillStatusPendingCollection,
		"collected":          BillStatusCollected,
	}
	for in, want := range cases {
		got, err := ParseBillStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseBillStatus("billed")
	assert.Error(t, err)
}

func TestParseEngagementStatus(t *testing.T) {
	got, err := ParseEngagementStatus("partner review")
	require.NoError(t, err)
	assert.Equal(t, EngagementPartnerReview, got)

	_, err = ParseEngagementStatus("Done")
	assert.Error(t, err)
}

func TestEngagementIsUnbilled(t *testing.T) {
	e := &Engagement{Status: EngagementCompleted}
	assert.True(t, e.IsUnbilled())

	e.BillStatus = BillStatusToBill
	assert.False(t, e.IsUnbilled())

	e = &Engagement{Status: EngagementInProcess}
	assert.False(t, e.IsUnbilled())
}

func TestActorRoles(t *testing.T) {
	assert.True(t, Actor{Role: RoleAccounts}.CanBill())
	assert.True(t, Actor{Role: RolePartner}.CanBill())
	assert.False(t, Actor{Role: RoleStaff}.CanBill())

	assert.True(t, Actor{Role: RoleAdmin}.CanForceBillStatus())
	assert.False(t, Actor{Role: RoleAccounts}.CanForceBillStatus())
}
