package service

import (
	"context"
	"fmt"

	"github.com/jesses-code-adventures/practice/internal/database"
)

// ImportFixture writes a validated fixture in one batch. Fixtures can set any
// engagement's bill status, so only partners and admins may load them.
func (s *Service) ImportFixture(ctx context.Context, fixture *database.Fixture) (int, error) {
	if !s.actor.CanForceBillStatus() {
		return 0, ErrAccessDenied
	}

	batch := s.db.NewBatch()
	n, err := fixture.Stage(batch, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if err := batch.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to import fixture: %w", err)
	}
	s.readModel.Invalidate()

	s.log.Info().Int("documents", n).Msg("fixture imported")
	return n, nil
}
