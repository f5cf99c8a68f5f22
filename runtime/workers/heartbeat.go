package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"chat-core/contract"
)

// HeartbeatWorker periodically logs process health (CPU, RSS, status)
// together with the number of users currently online. It is the
// operator's liveness signal when watching the server logs.
type HeartbeatWorker struct {
	log      *slog.Logger
	registry contract.Registry
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, registry contract.Registry, interval time.Duration) *HeartbeatWorker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &HeartbeatWorker{log: log, registry: registry, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("starting heartbeat worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := getSelfStats(p)
			if err != nil {
				w.log.Error("failed to collect self stats", "err", err)
				continue
			}
			w.log.Info("heartbeat",
				"pid", os.Getpid(),
				"pidStatus", status,
				"cpuPercent", cpu,
				"ramBytes", rss,
				"onlineUsers", w.registry.OnlineCount(),
			)
		}
	}
}

// getSelfStats retrieves memory, CPU and OS status of the given process.
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
