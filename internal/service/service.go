package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jesses-code-adventures/practice/internal/database"
	"github.com/jesses-code-adventures/practice/internal/models"
	"github.com/jesses-code-adventures/practice/internal/readmodel"
)

type Options struct {
	// NextBillStatus is what invoice generation moves an unpaid engagement to.
	NextBillStatus models.BillStatus
	Logger         zerolog.Logger
	Now            func() time.Time
}

// Service runs the billing lifecycle and timesheets for one acting employee.
type Service struct {
	db             database.DB
	activity       database.ActivityLog
	readModel      *readmodel.Service
	actor          models.Actor
	nextBillStatus models.BillStatus
	log            zerolog.Logger
	now            func() time.Time
}

func New(db database.DB, activity database.ActivityLog, readModel *readmodel.Service, actor models.Actor, opts Options) *Service {
	if opts.NextBillStatus == models.BillStatusNone {
		opts.NextBillStatus = models.BillStatusPendingCollection
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if readModel == nil {
		readModel = readmodel.New(db, 5*time.Minute)
	}
	return &Service{
		db:             db,
		activity:       activity,
		readModel:      readModel,
		actor:          actor,
		nextBillStatus: opts.NextBillStatus,
		log:            opts.Logger.With().Str("user_id", actor.UserID).Logger(),
		now:            opts.Now,
	}
}

func (s *Service) Actor() models.Actor {
	return s.actor
}

func (s *Service) requireBilling() error {
	if !s.actor.CanBill() {
		return ErrAccessDenied
	}
	return nil
}

// recordActivity runs after a successful commit, so a failure here is only
// logged.
func (s *Service) recordActivity(ctx context.Context, engagementID, clientID string, typ models.ActivityType, details map[string]any) {
	if s.activity == nil {
		return
	}
	err := s.activity.Record(ctx, models.ActivityEntry{
		EngagementID: engagementID,
		ClientID:     clientID,
		Type:         typ,
		UserID:       s.actor.UserID,
		UserName:     s.actor.UserName,
		Details:      details,
		Timestamp:    s.now().UTC(),
	})
	if err != nil {
		s.log.Warn().Err(err).
			Str("engagement_id", engagementID).
			Str("type", string(typ)).
			Msg("failed to record activity")
	}
}
