package workers

import (
	"context"
	"livehub/contract"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Snapshot is the latest operational sample served by the stats endpoint.
type Snapshot struct {
	Channels      int       `json:"channels"`
	Viewers       int       `json:"viewers"`
	CPUPercent    float64   `json:"cpu_percent"`
	RAMBytes      uint64    `json:"ram_bytes"`
	ProcessStatus string    `json:"process_status"`
	SampledAt     time.Time `json:"sampled_at"`
}

// StatsWorker samples process health (CPU, RAM, Status) and registry gauges
// on a fixed interval. Scrapes read the latest sample instead of touching
// gopsutil on the request path.
type StatsWorker struct {
	mu       sync.RWMutex
	log      *slog.Logger
	interval time.Duration
	registry contract.IRegistry
	latest   Snapshot
}

func NewStatsWorker(log *slog.Logger, interval time.Duration, registry contract.IRegistry) *StatsWorker {
	return &StatsWorker{log: log, interval: interval, registry: registry}
}

// Snapshot returns the most recent sample. Zero value until the first tick.
func (w *StatsWorker) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest
}

func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info("Starting stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	// Prime before the first tick so the endpoint has data immediately
	w.sample(p)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.sample(p)
		}
	}
}

func (w *StatsWorker) sample(p *process.Process) {
	rss, cpu, status, err := getSelfStats(p)
	if err != nil {
		w.log.Error("Failed to collect self stats", "error", err)
		return
	}

	snap := Snapshot{
		Channels:      len(w.registry.Channels()),
		Viewers:       w.registry.TotalSessions(),
		CPUPercent:    cpu,
		RAMBytes:      rss,
		ProcessStatus: status,
		SampledAt:     time.Now().UTC(),
	}

	w.mu.Lock()
	w.latest = snap
	w.mu.Unlock()
}

// getSelfStats retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
func getSelfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
