package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jesses-code-adventures/practice/internal/database"
	"github.com/jesses-code-adventures/practice/internal/models"
	"github.com/jesses-code-adventures/practice/internal/readmodel"
)

type SkippedEngagement struct {
	EngagementID string
	Reason       string
}

type SubmissionResult struct {
	Submitted []*models.PendingInvoice
	Skipped   []SkippedEngagement
}

// Engagements lists engagements with their display names.
func (s *Service) Engagements(ctx context.Context, filter database.EngagementFilter) ([]*readmodel.EngagementView, error) {
	engagements, err := s.db.ListEngagements(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list engagements: %w", err)
	}
	return s.readModel.EngagementViews(ctx, engagements)
}

// UnbilledEngagements is the exception report: every Completed engagement
// that has never been submitted for billing.
func (s *Service) UnbilledEngagements(ctx context.Context) ([]*readmodel.EngagementView, error) {
	if err := s.requireBilling(); err != nil {
		return nil, err
	}
	completed, err := s.db.ListEngagements(ctx, database.EngagementFilter{Status: models.EngagementCompleted})
	if err != nil {
		return nil, fmt.Errorf("failed to list engagements: %w", err)
	}

	var unbilled []*models.Engagement
	for _, e := range completed {
		if e.IsUnbilled() {
			unbilled = append(unbilled, e)
		}
	}
	return s.readModel.EngagementViews(ctx, unbilled)
}

// BillingQueue lists the pending invoices waiting to be raised.
func (s *Service) BillingQueue(ctx context.Context) ([]*readmodel.PendingInvoiceView, error) {
	if err := s.requireBilling(); err != nil {
		return nil, err
	}
	return s.readModel.PendingInvoiceViews(ctx)
}

// SubmitForBilling moves each eligible engagement to To Bill and queues one
// pending invoice for it. Engagements that cannot be submitted are skipped
// and reported; the rest are written in a single batch.
func (s *Service) SubmitForBilling(ctx context.Context, engagementIDs []string) (*SubmissionResult, error) {
	if err := s.requireBilling(); err != nil {
		return nil, err
	}

	result := &SubmissionResult{}
	skip := func(id, reason string) {
		s.log.Warn().Str("engagement_id", id).Str("reason", reason).Msg("skipping engagement")
		result.Skipped = append(result.Skipped, SkippedEngagement{EngagementID: id, Reason: reason})
	}

	now := s.now().UTC()
	batch := s.db.NewBatch()
	seen := make(map[string]bool, len(engagementIDs))
	for _, id := range engagementIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		e, err := s.db.GetEngagement(ctx, id)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) || errors.Is(err, database.ErrInvalidDocument) {
				skip(id, err.Error())
				continue
			}
			return nil, fmt.Errorf("failed to get engagement %s: %w", id, err)
		}
		if !e.CanSubmitForBilling() {
			skip(id, fmt.Sprintf("status %s, bill status %s", e.Status, e.BillStatus))
			continue
		}

		client, err := s.db.GetClient(ctx, e.ClientID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) || errors.Is(err, database.ErrInvalidDocument) {
				skip(id, fmt.Sprintf("client %s: %v", e.ClientID, err))
				continue
			}
			return nil, fmt.Errorf("failed to get client %s: %w", e.ClientID, err)
		}

		pending := newPendingInvoice(e, client, now)
		batch.ExpectBillStatus(e.ID, models.BillStatusNone).
			UpdateEngagementBilling(e.ID, database.EngagementBillingUpdate{
				BillStatus:     models.BillStatusToBill,
				SubmissionDate: &now,
			}).
			CreatePendingInvoice(pending)
		result.Submitted = append(result.Submitted, pending)
	}

	if len(result.Submitted) == 0 {
		return result, nil
	}

	if err := batch.Commit(ctx); err != nil {
		ids := make([]string, len(result.Submitted))
		for i, p := range result.Submitted {
			ids[i] = p.EngagementID
		}
		s.log.Error().Err(err).Strs("engagement_ids", ids).Msg("billing submission failed")
		return nil, &BillingError{Op: "submit for billing", EngagementID: strings.Join(ids, ","), Err: err}
	}

	for _, p := range result.Submitted {
		s.recordActivity(ctx, p.EngagementID, p.ClientID, models.ActivityBillingSubmitted, map[string]any{
			"pendingInvoiceId": p.ID,
			"billStatus":       string(models.BillStatusToBill),
		})
	}
	return result, nil
}

func newPendingInvoice(e *models.Engagement, client *models.Client, now time.Time) *models.PendingInvoice {
	return &models.PendingInvoice{
		ID:           models.NewUUID(),
		EngagementID: e.ID,
		ClientID:     e.ClientID,
		AssignedTo:   append([]string(nil), e.AssignedTo...),
		ReportedTo:   e.ReportedTo,
		PartnerID:    client.PartnerID,
		CreatedAt:    now,
	}
}

var allowedTransitions = map[models.BillStatus][]models.BillStatus{
	models.BillStatusToBill:            {models.BillStatusPendingCollection, models.BillStatusCollected},
	models.BillStatusPendingCollection: {models.BillStatusCollected},
}

func transitionAllowed(from, to models.BillStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionBillStatus sets an engagement's bill status directly. Forward
// moves along the lifecycle are always allowed; anything else needs force,
// which only partners and admins may use. Leaving To Bill removes every
// pending invoice for the engagement in the same batch.
func (s *Service) TransitionBillStatus(ctx context.Context, engagementID string, to models.BillStatus, force bool) (*models.Engagement, error) {
	if err := s.requireBilling(); err != nil {
		return nil, err
	}
	if force && !s.actor.CanForceBillStatus() {
		return nil, ErrAccessDenied
	}

	e, err := s.db.GetEngagement(ctx, engagementID)
	if err != nil {
		return nil, fmt.Errorf("failed to get engagement: %w", err)
	}
	from := e.BillStatus
	if from == to {
		return e, nil
	}

	if from == models.BillStatusNone && to == models.BillStatusToBill && !force {
		res, err := s.SubmitForBilling(ctx, []string{engagementID})
		if err != nil {
			return nil, err
		}
		if len(res.Submitted) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotEligible, res.Skipped[0].Reason)
		}
		return s.db.GetEngagement(ctx, engagementID)
	}

	if !force && !transitionAllowed(from, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}

	pending, err := s.db.ListPendingInvoicesForEngagement(ctx, engagementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invoices: %w", err)
	}

	update := database.EngagementBillingUpdate{BillStatus: to}
	batch := s.db.NewBatch().ExpectBillStatus(engagementID, from)

	switch to {
	case models.BillStatusNone:
		update.ClearSubmissionDate = true
	case models.BillStatusToBill:
		if e.Status != models.EngagementCompleted {
			return nil, fmt.Errorf("%w: status %s", ErrNotEligible, e.Status)
		}
		now := s.now().UTC()
		update.SubmissionDate = &now
		if len(pending) == 0 {
			client, err := s.db.GetClient(ctx, e.ClientID)
			if err != nil {
				return nil, fmt.Errorf("failed to get client %s: %w", e.ClientID, err)
			}
			batch.CreatePendingInvoice(newPendingInvoice(e, client, now))
		}
	}
	batch.UpdateEngagementBilling(engagementID, update)
	if to != models.BillStatusToBill {
		for _, p := range pending {
			batch.DeletePendingInvoice(p.ID)
		}
	}

	if err := batch.Commit(ctx); err != nil {
		s.log.Error().Err(err).Str("engagement_id", engagementID).Msg("bill status change failed")
		return nil, &BillingError{Op: "change bill status", EngagementID: engagementID, Err: err}
	}

	s.recordActivity(ctx, engagementID, e.ClientID, models.ActivityBillStatusChanged, map[string]any{
		"from":   from.String(),
		"to":     to.String(),
		"forced": force,
	})
	return s.db.GetEngagement(ctx, engagementID)
}
