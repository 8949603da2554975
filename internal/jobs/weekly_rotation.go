package jobs

import (
	"log"

	"github.com/go-co-op/gocron/v2"

	"roninads/internal/config"
	"roninads/internal/services"
)

// StartWeeklyRotation schedules the automatic prize period rotation when it
// is enabled. Each run draws the winners of the current period and opens the
// next one. Returns the scheduler so main can shut it down.
func StartWeeklyRotation(weekly *services.WeeklyService, cfg config.WeeklyConfig) (gocron.Scheduler, error) {
	if !cfg.AutoRotate {
		return nil, nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(cfg.RotateInterval),
		gocron.NewTask(func() {
			period, err := weekly.RotatePeriod(cfg.DefaultItemName, cfg.DefaultQuantity)
			if err != nil {
				log.Printf("[WeeklyRotation] Rotation failed: %v", err)
				return
			}
			log.Printf("[WeeklyRotation] Opened prize period %s", period.PeriodUID)
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	log.Printf("[WeeklyRotation] Scheduler started, interval %s", cfg.RotateInterval)
	return sched, nil
}
