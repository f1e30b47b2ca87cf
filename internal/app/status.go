package app

import (
	"fmt"
	"sync"
	"time"
)

// Status is the explicit batch-progress state shared with whichever
// surface publishes it (the watcher's status page). The pipeline only
// updates it; publishing is the caller's concern.
type Status struct {
	mu sync.Mutex

	totalProcessed int
	successCount   int
	lastProcessed  time.Time
	current        string
	startTime      time.Time
}

// Snapshot is an immutable copy safe to hand to an encoder.
type Snapshot struct {
	TotalProcessed int    `json:"total_processed"`
	SuccessCount   int    `json:"success_count"`
	CurrentStatus  string `json:"current_status"`
	LastProcessed  string `json:"last_processed"`
	Uptime         string `json:"uptime"`
}

// NewStatus starts the uptime clock.
func NewStatus() *Status {
	return &Status{startTime: time.Now(), current: "等待文件更新..."}
}

// SetCurrent replaces the human-readable progress line.
func (s *Status) SetCurrent(msg string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.current = msg
	s.mu.Unlock()
}

// RecordBatch adds one finished batch to the counters.
func (s *Status) RecordBatch(total, succeeded int) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.totalProcessed += total
	s.successCount += succeeded
	s.lastProcessed = time.Now()
	s.mu.Unlock()
}

// Snapshot returns a consistent copy of the counters.
func (s *Status) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	last := ""
	if !s.lastProcessed.IsZero() {
		last = s.lastProcessed.Format("2006-01-02 15:04:05")
	}
	return Snapshot{
		TotalProcessed: s.totalProcessed,
		SuccessCount:   s.successCount,
		CurrentStatus:  s.current,
		LastProcessed:  last,
		Uptime:         formatUptime(time.Since(s.startTime)),
	}
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	return fmt.Sprintf("%d天%d时%d分", days, hours, mins)
}
