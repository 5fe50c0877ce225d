package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/retailpro/retailpro/internal/reporting"
)

// SummaryRefresher rebuilds the profit and loss summary view and invalidates
// cached report aggregates afterwards.
type SummaryRefresher struct {
	Repo   *reporting.Repository
	Cache  *reporting.Cache
	Logger *slog.Logger
}

// HandleSummaryRefresh processes TaskTypeSummaryRefresh tasks.
func (s *SummaryRefresher) HandleSummaryRefresh(ctx context.Context, t *asynq.Task) error {
	if s.Repo == nil {
		return nil
	}
	if err := s.Repo.RefreshSummary(ctx); err != nil {
		if s.Logger != nil {
			s.Logger.Error("refresh profit_loss_summary", slog.Any("error", err))
		}
		return err
	}
	if err := s.Cache.Bump(ctx); err != nil && s.Logger != nil {
		s.Logger.Warn("bump report cache after refresh", slog.Any("error", err))
	}
	if s.Logger != nil {
		s.Logger.Info("refreshed profit_loss_summary", slog.String("job", "summary_refresh"))
	}
	return nil
}
