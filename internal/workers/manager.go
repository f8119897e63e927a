// Package workers runs periodic housekeeping next to the server.
package workers

import (
	"context"
	"time"

	"lorryadmin/internal/logger"
)

type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

type Manager struct {
	log logger.Logger

	scheduler *Scheduler
	services  *ManagerServices
}

type ManagerServices struct {
	Blobs BlobPruner
}

func NewManager(log logger.Logger, scheduler *Scheduler, services *ManagerServices) *Manager {
	return &Manager{
		log: log,

		scheduler: scheduler,
		services:  services,
	}
}

func (m *Manager) Start(ctx context.Context) {
	m.log.Info("worker: manager started")

	m.scheduler.RunDaily(ctx, DailySchedule{Hour: 3, Minute: 0}, NewBlobCleanupWorker(m.services.Blobs, 24*time.Hour, m.log))
}
