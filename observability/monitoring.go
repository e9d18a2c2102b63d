package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Monitor aggregates live counters of the sync engine. All increments are
// atomic; Snapshot is safe to call from the debug server at any time.
type Monitor struct {
	log *slog.Logger

	MessagesAppended   uint64
	SnapshotsDelivered uint64
	AppendedDelivered  uint64
	DirectoryUpdates   uint64
	NotificationsShown uint64
	DroppedCallbacks   uint64

	startedAt time.Time
	proc      *process.Process
}

func NewMonitor(log *slog.Logger) *Monitor {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("Self process stats unavailable", "error", err)
	}
	return &Monitor{log: log, startedAt: time.Now(), proc: p}
}

func (m *Monitor) IncrMessagesAppended()   { atomic.AddUint64(&m.MessagesAppended, 1) }
func (m *Monitor) IncrSnapshotsDelivered() { atomic.AddUint64(&m.SnapshotsDelivered, 1) }
func (m *Monitor) IncrAppendedDelivered()  { atomic.AddUint64(&m.AppendedDelivered, 1) }
func (m *Monitor) IncrDirectoryUpdates()   { atomic.AddUint64(&m.DirectoryUpdates, 1) }
func (m *Monitor) IncrNotificationsShown() { atomic.AddUint64(&m.NotificationsShown, 1) }
func (m *Monitor) IncrDroppedCallbacks()   { atomic.AddUint64(&m.DroppedCallbacks, 1) }

// Snapshot returns the current counters plus self process stats, in the
// map form the debug server's StatsProvider expects.
func (m *Monitor) Snapshot() map[string]any {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := map[string]any{
		"Uptime":             time.Since(m.startedAt).Round(time.Second).String(),
		"MessagesAppended":   atomic.LoadUint64(&m.MessagesAppended),
		"SnapshotsDelivered": atomic.LoadUint64(&m.SnapshotsDelivered),
		"AppendedDelivered":  atomic.LoadUint64(&m.AppendedDelivered),
		"DirectoryUpdates":   atomic.LoadUint64(&m.DirectoryUpdates),
		"NotificationsShown": atomic.LoadUint64(&m.NotificationsShown),
		"DroppedCallbacks":   atomic.LoadUint64(&m.DroppedCallbacks),
		"AllocMemMb":         mem.Alloc / 1024 / 1024,
		"NumGC":              mem.NumGC,
	}

	if m.proc != nil {
		if rss, err := m.proc.MemoryInfo(); err == nil {
			stats["ProcessRssMb"] = rss.RSS / 1024 / 1024
		}
		if cpu, err := m.proc.CPUPercent(); err == nil {
			stats["ProcessCpuPercent"] = cpu
		}
	}
	return stats
}
