package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesses-code-adventures/practice/internal/database"
	"github.com/jesses-code-adventures/practice/internal/models"
	"github.com/jesses-code-adventures/practice/internal/readmodel"
)

func TestSubmitForBillingQueuesPendingInvoice(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleAccounts)
	ctx := context.Background()

	pending := f.submit(t, svc, "e1")
	assert.Equal(t, "e1", pending.EngagementID)
	assert.Equal(t, "c1", pending.ClientID)
	assert.Equal(t, []string{"emp-1"}, pending.AssignedTo)
	assert.Equal(t, "emp-m", pending.ReportedTo)
	assert.Equal(t, "emp-p", pending.PartnerID)

	e, err := f.store.GetEngagement(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusToBill, e.BillStatus)
	require.NotNil(t, e.BillSubmissionDate)
	assert.True(t, e.BillSubmissionDate.Equal(testNow))

	stored, err := f.store.ListPendingInvoicesForEngagement(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, pending.ID, stored[0].ID)

	assert.Equal(t, []models.ActivityType{models.ActivityBillingSubmitted}, f.activity.types())
}

func TestSubmitForBillingTwiceLeavesOnePendingInvoice(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleAccounts)
	ctx := context.Background()

	f.submit(t, svc, "e1")

	res, err := svc.SubmitForBilling(ctx, []string{"e1", "e1"})
	require.NoError(t, err)
	assert.Empty(t, res.Submitted)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "e1", res.Skipped[0].EngagementID)

	stored, err := f.store.ListPendingInvoicesForEngagement(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestSubmitForBillingSkipsIneligible(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleAdmin)
	ctx := context.Background()

	res, err := svc.SubmitForBilling(ctx, []string{"e2", "e3", "missing", "e4"})
	require.NoError(t, err)

	require.Len(t, res.Submitted, 1)
	assert.Equal(t, "e4", res.Submitted[0].EngagementID)

	skipped := make([]string, len(res.Skipped))
	for i, s := range res.Skipped {
		skipped[i] = s.EngagementID
	}
	assert.Equal(t, []string{"e2", "e3", "missing"}, skipped)

	e3, err := f.store.GetEngagement(ctx, "e3")
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusNone, e3.BillStatus)
}

func TestSubmitForBillingFailedCommitChangesNothing(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleAccounts)
	ctx := context.Background()

	f.breakWrites(t, "no_pending", "INSERT", "NEW.collection = 'pendingInvoices'")

	_, err := svc.SubmitForBilling(ctx, []string{"e1", "e4"})
	var billingErr *BillingError
	require.ErrorAs(t, err, &billingErr)
	assert.Equal(t, "submit for billing", billingErr.Op)

	for _, id := range []string{"e1", "e4"} {
		e, err := f.store.GetEngagement(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.BillStatusNone, e.BillStatus, id)
		assert.Nil(t, e.BillSubmissionDate, id)
	}
	assert.Empty(t, f.activity.entries)
}

func TestBillingRequiresBillingRole(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleStaff)
	ctx := context.Background()

	_, err := svc.SubmitForBilling(ctx, []string{"e1"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.UnbilledEngagements(ctx)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.BillingQueue(ctx)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.TransitionBillStatus(ctx, "e1", models.BillStatusToBill, false)
	assert.ErrorIs(t, err, ErrAccessDenied)

	// staff can still browse engagements
	views, err := svc.Engagements(ctx, database.EngagementFilter{})
	require.NoError(t, err)
	assert.Len(t, views, 4)

	e, err := f.store.GetEngagement(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusNone, e.BillStatus)
}

func TestUnbilledEngagements(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RolePartner)
	ctx := context.Background()

	views, err := svc.UnbilledEngagements(ctx)
	require.NoError(t, err)
	ids := make([]string, len(views))
	for i, v := range views {
		ids[i] = v.Engagement.ID
	}
	assert.ElementsMatch(t, []string{"e1", "e3", "e4"}, ids)

	for _, v := range views {
		if v.Engagement.ID == "e3" {
			assert.Equal(t, readmodel.UnknownClient, v.ClientName)
			assert.Equal(t, readmodel.NotAvailable, v.PartnerName)
		}
	}

	f.submit(t, svc, "e1")
	views, err = svc.UnbilledEngagements(ctx)
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestLowercaseStatusesFromOtherWriters(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleAccounts)
	ctx := context.Background()

	f.setRaw(t, database.CollectionEngagements, "e4", "status", "completed")
	views, err := svc.UnbilledEngagements(ctx)
	require.NoError(t, err)
	ids := make([]string, len(views))
	for i, v := range views {
		ids[i] = v.Engagement.ID
	}
	assert.ElementsMatch(t, []string{"e1", "e3", "e4"}, ids)

	pending := f.submit(t, svc, "e1")
	f.setRaw(t, database.CollectionEngagements, "e1", "billStatus", "to bill")

	inv, err := svc.GenerateInvoice(ctx, InvoiceRequest{PendingInvoiceID: pending.ID, FirmID: "f1", Lines: []LineInput{auditLine(1)}})
	require.NoError(t, err)
	assertAmount(t, "11800", inv.TotalAmount, "totalAmount")

	e, err := f.store.GetEngagement(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusPendingCollection, e.BillStatus)
}

func TestBillingQueue(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleAccounts)
	ctx := context.Background()

	f.submit(t, svc, "e4")
	f.submit(t, svc, "e1")

	queue, err := svc.BillingQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, "Acme Traders", queue[0].ClientName)
	assert.Equal(t, "Bangalore Exports", queue[1].ClientName)
	assert.Equal(t, "Statutory Audit", queue[0].TypeName)
	assert.Equal(t, []string{"Ravi Kumar"}, queue[0].AssignedNames)
	assert.Equal(t, "Meera Iyer", queue[0].ReportedToName)
	assert.Equal(t, "Priya Rao", queue[0].PartnerName)
}

func TestTransitionBillStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("forward move removes pending invoice", func(t *testing.T) {
		f := newFixture(t)
		svc := f.as(models.RoleAccounts)
		f.submit(t, svc, "e1")

		e, err := svc.TransitionBillStatus(ctx, "e1", models.BillStatusCollected, false)
		require.NoError(t, err)
		assert.Equal(t, models.BillStatusCollected, e.BillStatus)

		pending, err := f.store.ListPendingInvoicesForEngagement(ctx, "e1")
		require.NoError(t, err)
		assert.Empty(t, pending)
		assert.Contains(t, f.activity.types(), models.ActivityBillStatusChanged)
	})

	t.Run("backward move needs force", func(t *testing.T) {
		f := newFixture(t)
		svc := f.as(models.RoleAccounts)
		f.submit(t, svc, "e1")
		_, err := svc.TransitionBillStatus(ctx, "e1", models.BillStatusPendingCollection, false)
		require.NoError(t, err)

		_, err = svc.TransitionBillStatus(ctx, "e1", models.BillStatusToBill, false)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		_, err = svc.TransitionBillStatus(ctx, "e1", models.BillStatusNone, true)
		assert.ErrorIs(t, err, ErrAccessDenied)

		e, err := f.as(models.RolePartner).TransitionBillStatus(ctx, "e1", models.BillStatusNone, true)
		require.NoError(t, err)
		assert.Equal(t, models.BillStatusNone, e.BillStatus)
		assert.Nil(t, e.BillSubmissionDate)
	})

	t.Run("forced move back to To Bill requeues", func(t *testing.T) {
		f := newFixture(t)
		svc := f.as(models.RoleAdmin)
		f.submit(t, svc, "e1")
		_, err := svc.TransitionBillStatus(ctx, "e1", models.BillStatusCollected, false)
		require.NoError(t, err)

		e, err := svc.TransitionBillStatus(ctx, "e1", models.BillStatusToBill, true)
		require.NoError(t, err)
		assert.Equal(t, models.BillStatusToBill, e.BillStatus)

		pending, err := f.store.ListPendingInvoicesForEngagement(ctx, "e1")
		require.NoError(t, err)
		assert.Len(t, pending, 1)
	})

	t.Run("None to To Bill submits", func(t *testing.T) {
		f := newFixture(t)
		svc := f.as(models.RoleAccounts)

		e, err := svc.TransitionBillStatus(ctx, "e1", models.BillStatusToBill, false)
		require.NoError(t, err)
		assert.Equal(t, models.BillStatusToBill, e.BillStatus)

		pending, err := f.store.ListPendingInvoicesForEngagement(ctx, "e1")
		require.NoError(t, err)
		assert.Len(t, pending, 1)

		_, err = svc.TransitionBillStatus(ctx, "e2", models.BillStatusToBill, false)
		assert.ErrorIs(t, err, ErrNotEligible)
	})

	t.Run("forcing To Bill needs completed work", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.as(models.RolePartner).TransitionBillStatus(ctx, "e2", models.BillStatusToBill, true)
		assert.ErrorIs(t, err, ErrNotEligible)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		f := newFixture(t)
		svc := f.as(models.RoleAccounts)
		f.submit(t, svc, "e1")
		before := len(f.activity.entries)

		e, err := svc.TransitionBillStatus(ctx, "e1", models.BillStatusToBill, false)
		require.NoError(t, err)
		assert.Equal(t, models.BillStatusToBill, e.BillStatus)
		assert.Len(t, f.activity.entries, before)
	})

	t.Run("failed commit keeps pending invoice", func(t *testing.T) {
		f := newFixture(t)
		svc := f.as(models.RoleAccounts)
		f.submit(t, svc, "e1")
		f.breakWrites(t, "no_delete", "DELETE", "OLD.collection = 'pendingInvoices'")

		_, err := svc.TransitionBillStatus(ctx, "e1", models.BillStatusCollected, false)
		var billingErr *BillingError
		require.True(t, errors.As(err, &billingErr))
		assert.Equal(t, "e1", billingErr.EngagementID)

		e, err := f.store.GetEngagement(ctx, "e1")
		require.NoError(t, err)
		assert.Equal(t, models.BillStatusToBill, e.BillStatus)
		pending, err := f.store.ListPendingInvoicesForEngagement(ctx, "e1")
		require.NoError(t, err)
		assert.Len(t, pending, 1)
	})
}
