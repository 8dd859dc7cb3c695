package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesses-code-adventures/practice/internal/database"
	"github.com/jesses-code-adventures/practice/internal/models"
)

const rebillFixture = `
engagements:
  - id: e2
    clientId: c1
    type: audit
    status: Completed
    billStatus: Collected
`

func TestImportFixtureIsRestricted(t *testing.T) {
	ctx := context.Background()

	for _, role := range []models.Role{models.RoleStaff, models.RoleAccounts} {
		f := newFixture(t)
		fixture, err := database.LoadFixture(strings.NewReader(rebillFixture))
		require.NoError(t, err)

		_, err = f.as(role).ImportFixture(ctx, fixture)
		assert.ErrorIs(t, err, ErrAccessDenied, role)

		e, err := f.store.GetEngagement(ctx, "e2")
		require.NoError(t, err)
		assert.Equal(t, models.EngagementInProcess, e.Status, role)
		assert.Equal(t, models.BillStatusNone, e.BillStatus, role)
	}
}

func TestImportFixture(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleAdmin)
	ctx := context.Background()

	// warm the read model so the import has to invalidate it
	views, err := svc.UnbilledEngagements(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)

	fixture, err := database.LoadFixture(strings.NewReader(`
clients:
  - id: c1
    name: Acme Traders Pvt Ltd
    partnerId: emp-p
    state: Maharashtra
`))
	require.NoError(t, err)

	n, err := svc.ImportFixture(ctx, fixture)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	view, err := svc.readModel.EngagementView(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Traders Pvt Ltd", view.ClientName)
}
