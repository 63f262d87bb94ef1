package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsServer отдаёт метрики реестра по HTTP на /metrics
type MetricsServer struct {
	srv *http.Server
	log *zap.Logger
}

// NewMetricsServer создаёт сервер метрик для gatherer
func NewMetricsServer(addr string, gatherer prometheus.Gatherer, log *zap.Logger) *MetricsServer {
	if log == nil {
		log = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &MetricsServer{
		srv: &http.Server{Addr: addr, Handler: mux},
		log: log,
	}
}

// Handler возвращает обработчик запросов (для тестов)
func (m *MetricsServer) Handler() http.Handler {
	return m.srv.Handler
}

// Start запускает сервер в отдельной горутине
func (m *MetricsServer) Start() {
	go func() {
		m.log.Info("Сервер метрик запущен", zap.String("addr", m.srv.Addr))
		if err := m.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error("Сервер метрик остановлен с ошибкой", zap.Error(err))
		}
	}()
}

// Shutdown останавливает сервер
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
