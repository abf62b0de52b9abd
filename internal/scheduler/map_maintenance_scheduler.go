package scheduler

import (
	"github.com/rayshop/shopmap-backend/internal/app/service"
	"github.com/rayshop/shopmap-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// MapMaintenanceScheduler periodically repairs stored image maps:
// sectionless maps are healed and abandoned drafts holding inline image
// payloads are purged. The same repairs run lazily on read; the
// scheduled pass keeps maps nobody has opened recently from rotting.
type MapMaintenanceScheduler struct {
	cron       *cron.Cron
	mapService service.ImageMapService
}

func NewMapMaintenanceScheduler(mapService service.ImageMapService) *MapMaintenanceScheduler {
	return &MapMaintenanceScheduler{
		cron:       cron.New(),
		mapService: mapService,
	}
}

// Start schedules the maintenance pass daily at 04:00.
func (s *MapMaintenanceScheduler) Start() error {
	_, err := s.cron.AddFunc("0 4 * * *", func() {
		logger.Info("Starting scheduled image map maintenance", nil)

		if err := s.mapService.Maintain(); err != nil {
			logger.Error("Scheduled image map maintenance failed", err)
			return
		}

		logger.Info("Scheduled image map maintenance completed", nil)
	})
	if err != nil {
		logger.Error("Failed to add cron job for map maintenance", err)
		return err
	}

	s.cron.Start()
	logger.Info("Map maintenance scheduler started (daily at 4:00 AM)", nil)

	return nil
}

// Stop stops the scheduler
func (s *MapMaintenanceScheduler) Stop() {
	logger.Info("Stopping map maintenance scheduler...", nil)
	s.cron.Stop()
	logger.Info("Map maintenance scheduler stopped", nil)
}
