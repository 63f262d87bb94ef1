package world

import (
	"time"

	"github.com/annel0/tileworld/internal/world/light"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - Prometheus-метрики мира. Обновляются только из игрового цикла;
// HTTP-обработчик читает лишь сами коллекторы. Все методы допускают nil.
type Metrics struct {
	chunksGenerated prometheus.Counter
	chunksLoaded    prometheus.Gauge
	generateSeconds prometheus.Histogram
	tilesSet        prometheus.Counter
	tilesBroken     prometheus.Counter
	lightUpdates    prometheus.Counter
	lightReassigns  prometheus.Counter
	lightQueuePeak  prometheus.Gauge
	lateWrites      prometheus.Gauge
	updateSeconds   prometheus.Histogram
	visibleChunks   prometheus.Gauge

	// для Counter храним прошлое значение статистики и прибавляем дельту
	prevLight light.Stats
}

// NewMetrics создаёт метрики и регистрирует их в reg (если reg не nil)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		chunksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tileworld",
			Name:      "chunks_generated_total",
			Help:      "Количество сгенерированных чанков.",
		}),
		chunksLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tileworld",
			Name:      "chunks_loaded",
			Help:      "Количество записей чанков в памяти, включая записи только со светом.",
		}),
		generateSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tileworld",
			Name:      "chunk_generate_seconds",
			Help:      "Время генерации чанка вместе с начальным светом.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		tilesSet: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tileworld",
			Name:      "tiles_set_total",
			Help:      "Записи тайлов через хранилище чанков.",
		}),
		tilesBroken: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tileworld",
			Name:      "tiles_broken_total",
			Help:      "Разрушенные тайлы.",
		}),
		lightUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tileworld",
			Name:      "light_updates_total",
			Help:      "Изменения уровня света тайлов.",
		}),
		lightReassigns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tileworld",
			Name:      "light_reassigns_total",
			Help:      "Тайлы, переназначенные при снятии источника света.",
		}),
		lightQueuePeak: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tileworld",
			Name:      "light_queue_peak",
			Help:      "Максимальная длина очереди BFS освещения.",
		}),
		lateWrites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tileworld",
			Name:      "late_writes_pending",
			Help:      "Отложенные записи в ещё не созданные чанки.",
		}),
		updateSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tileworld",
			Name:      "world_update_seconds",
			Help:      "Время шага мира за кадр.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		visibleChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tileworld",
			Name:      "visible_chunks",
			Help:      "Размер окна видимых чанков.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.chunksGenerated, m.chunksLoaded, m.generateSeconds, m.tilesSet,
			m.tilesBroken, m.lightUpdates, m.lightReassigns, m.lightQueuePeak, m.lateWrites,
			m.updateSeconds, m.visibleChunks)
	}
	return m
}

func (m *Metrics) chunkGenerated(took time.Duration) {
	if m == nil {
		return
	}
	m.chunksGenerated.Inc()
	m.generateSeconds.Observe(took.Seconds())
}

func (m *Metrics) tileSet() {
	if m == nil {
		return
	}
	m.tilesSet.Inc()
}

func (m *Metrics) tileBroken() {
	if m == nil {
		return
	}
	m.tilesBroken.Inc()
}

func (m *Metrics) frame(took time.Duration, visible int) {
	if m == nil {
		return
	}
	m.updateSeconds.Observe(took.Seconds())
	m.visibleChunks.Set(float64(visible))
}

// syncWorld переносит накопленную статистику света и размеры буферов
func (m *Metrics) syncWorld(w *World) {
	if m == nil {
		return
	}
	stats := w.light.Stats()
	if d := stats.Updates - m.prevLight.Updates; d > 0 {
		m.lightUpdates.Add(float64(d))
	}
	if d := stats.Reassigns - m.prevLight.Reassigns; d > 0 {
		m.lightReassigns.Add(float64(d))
	}
	m.lightQueuePeak.Set(float64(stats.PeakQueue))
	m.prevLight = stats

	m.chunksLoaded.Set(float64(len(w.chunks)))
	m.lateWrites.Set(float64(w.late.Len()))
}
