package services

import (
	"context"
	"time"

	"salescrm/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// SnapshotService logs a daily pipeline snapshot so stage movement and
// pipeline value are traceable over time from the logs alone.
type SnapshotService struct {
	dashboard *DashboardService
	log       *logger.Logger
	cron      *cron.Cron
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(dashboard *DashboardService, log *logger.Logger) *SnapshotService {
	return &SnapshotService{
		dashboard: dashboard,
		log:       log,
		cron:      cron.New(),
	}
}

// Start schedules the daily snapshot at 06:00 server time and takes one
// immediately so a fresh deployment has a baseline.
func (s *SnapshotService) Start() error {
	if _, err := s.cron.AddFunc("0 6 * * *", s.takeSnapshot); err != nil {
		return err
	}
	s.cron.Start()

	go s.takeSnapshot()

	s.log.Info().Msg("pipeline snapshot job scheduled")
	return nil
}

// Stop stops the cron scheduler and waits for a running job to finish
func (s *SnapshotService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *SnapshotService) takeSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data, err := s.dashboard.GetSalesDashboard(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("pipeline snapshot failed")
		return
	}

	event := s.log.Info().
		Int64("open_opportunities", data.OpenOpportunities).
		Int64("overdue_opportunities", data.OverdueOpportunities).
		Str("pipeline_value", data.PipelineValue.String()).
		Str("weighted_pipeline_value", data.WeightedPipelineValue.String()).
		Int64("won_this_month", data.WonThisMonth).
		Int64("converted_leads", data.ConvertedLeads)

	for _, stage := range data.StageBreakdown {
		event = event.Int64("stage_"+string(stage.Stage), stage.Count)
	}

	event.Msg("daily pipeline snapshot")
}
