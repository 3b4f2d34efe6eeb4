// Package health reports process liveness, a best-effort database probe and
// basic process statistics.
package health

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/domunity/backend/pkg/logger"
)

// Version is the reported service version.
const Version = "1.0.0"

// Pinger is the optional database reachability probe.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Status is the health report. It never reflects a mutation.
type Status struct {
	Status        string
	Version       string
	Database      string
	UptimeSeconds int64
	Goroutines    int
	MemoryRSS     uint64
	Timestamp     time.Time
}

// Service implements the liveness use case.
type Service struct {
	db      Pinger
	started time.Time
	log     *logger.Logger
}

// New creates a health service. db may be nil when no database is wired.
func New(db Pinger, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("health")
	}
	return &Service{db: db, started: time.Now(), log: log}
}

// Check reports the current health status. A failing database probe degrades
// the report but never fails the call.
func (s *Service) Check(ctx context.Context) Status {
	status := Status{
		Status:        "healthy",
		Version:       Version,
		Database:      "not configured",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		Timestamp:     time.Now().UTC(),
	}

	if s.db != nil {
		probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(probeCtx); err != nil {
			s.log.WithError(err).Warn("database probe failed")
			status.Database = "unavailable"
			status.Status = "degraded"
		} else {
			status.Database = "ok"
		}
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
			status.MemoryRSS = mem.RSS
		}
	}

	return status
}
