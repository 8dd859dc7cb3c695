package database

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesses-code-adventures/practice/internal/models"
)

const seedYAML = `
clients:
  - id: c1
    name: Acme Traders
    partnerId: emp-p
    state: Maharashtra
    gstin: 27AAACA1234A1Z5
firms:
  - id: f1
    name: Rao & Co
    gstn: 27AAAFR0000A1Z1
    state: Maharashtra
    invoicePrefix: RAO
employees:
  - id: emp-p
    name: Priya Rao
    role: partner
engagementTypes:
  - id: audit
    name: Statutory Audit
taxRates:
  - id: gst18
    name: GST 18%
    rate: 18
hsnSacCodes:
  - id: sac1
    code: "998222"
    taxRateId: gst18
salesItems:
  - id: s1
    name: Audit fee
    rate: 25000.5
    sacCodeId: sac1
engagements:
  - id: e1
    clientId: c1
    type: audit
    status: Completed
    assignedTo: [emp-p]
    dueDate: 2025-09-30
  - id: e2
    clientId: c1
    type: audit
    status: In Process
    createdAt: "2025-04-02T09:00:00Z"
`

func TestFixtureImport(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	now := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)

	fixture, err := LoadFixture(strings.NewReader(seedYAML))
	require.NoError(t, err)

	batch := store.NewBatch()
	n, err := fixture.Stage(batch, now)
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	require.NoError(t, batch.Commit(ctx))

	client, err := store.GetClient(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Traders", client.Name)
	assert.Equal(t, "27AAACA1234A1Z5", *client.GSTIN)

	items, err := store.ListSalesItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Rate.Equal(decimal.RequireFromString("25000.5")))

	e, err := store.GetEngagement(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.EngagementCompleted, e.Status)
	assert.Equal(t, models.BillStatusNone, e.BillStatus)
	assert.True(t, e.CreatedAt.Equal(now))
	require.NotNil(t, e.DueDate)
	assert.Equal(t, 2025, e.DueDate.Year())

	e2, err := store.GetEngagement(ctx, "e2")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.April, 2, 9, 0, 0, 0, time.UTC), e2.CreatedAt.UTC())

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, models.RolePartner, employees[0].Role)
}

func TestFixtureRejectsInvalidEntries(t *testing.T) {
	tests := map[string]string{
		"missing id":    "clients:\n  - name: Nameless\n    state: Goa\n",
		"bad status":    "engagements:\n  - id: e1\n    clientId: c1\n    status: Finished\n",
		"negative rate": "taxRates:\n  - id: t1\n    name: Bad\n    rate: -5\n",
		"wrong type":    "salesItems:\n  - id: s1\n    name: Fee\n    rate: lots\n",
		"bad date":      "engagements:\n  - id: e1\n    clientId: c1\n    status: Completed\n    dueDate: someday\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			fixture, err := LoadFixture(strings.NewReader(doc))
			require.NoError(t, err)

			batch := newTestStore(t).NewBatch()
			_, err = fixture.Stage(batch, time.Now())
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestLoadFixtureRejectsUnknownKeys(t *testing.T) {
	_, err := LoadFixture(strings.NewReader("invoices:\n  - id: i1\n"))
	assert.Error(t, err)

	f, err := LoadFixture(strings.NewReader(""))
	require.NoError(t, err)
	n, err := f.Stage(newTestStore(t).NewBatch(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}
