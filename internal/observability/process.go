package observability

import (
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats публикует метрики процесса симуляции: CPU, память, время работы
type ProcessStats struct {
	StartTime time.Time

	proc *process.Process

	cpuPercent prometheus.Gauge
	rssBytes   prometheus.Gauge
	heapBytes  prometheus.Gauge
	goroutines prometheus.Gauge
	uptime     prometheus.Gauge
}

// NewProcessStats создаёт метрики и регистрирует их в reg (если reg не nil)
func NewProcessStats(reg prometheus.Registerer) *ProcessStats {
	ps := &ProcessStats{
		StartTime: time.Now(),
		cpuPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tileworld", Subsystem: "process", Name: "cpu_percent",
			Help: "Использование CPU процессом, проценты.",
		}),
		rssBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tileworld", Subsystem: "process", Name: "rss_bytes",
			Help: "Резидентная память процесса.",
		}),
		heapBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tileworld", Subsystem: "process", Name: "heap_alloc_bytes",
			Help: "Занятая куча Go.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tileworld", Subsystem: "process", Name: "goroutines",
			Help: "Количество горутин.",
		}),
		uptime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tileworld", Subsystem: "process", Name: "uptime_seconds",
			Help: "Время работы процесса.",
		}),
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		ps.proc = p
	}
	if reg != nil {
		reg.MustRegister(ps.cpuPercent, ps.rssBytes, ps.heapBytes, ps.goroutines, ps.uptime)
	}
	return ps
}

// Snapshot - значения метрик на момент Refresh
type Snapshot struct {
	CPUPercent float64
	RSSBytes   uint64
	HeapBytes  uint64
	Goroutines int
	Uptime     time.Duration
}

// Refresh снимает показания и обновляет метрики. Ошибки gopsutil не фатальны:
// соответствующее значение остаётся нулевым.
func (ps *ProcessStats) Refresh() Snapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	s := Snapshot{
		HeapBytes:  m.HeapAlloc,
		Goroutines: runtime.NumGoroutine(),
		Uptime:     time.Since(ps.StartTime),
	}
	if ps.proc != nil {
		if cpu, err := ps.proc.CPUPercent(); err == nil {
			s.CPUPercent = cpu
		}
		if mem, err := ps.proc.MemoryInfo(); err == nil && mem != nil {
			s.RSSBytes = mem.RSS
		}
	}

	ps.cpuPercent.Set(s.CPUPercent)
	ps.rssBytes.Set(float64(s.RSSBytes))
	ps.heapBytes.Set(float64(s.HeapBytes))
	ps.goroutines.Set(float64(s.Goroutines))
	ps.uptime.Set(s.Uptime.Seconds())
	return s
}
