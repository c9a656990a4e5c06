package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	logx "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/logger"
	"github.com/tanpawarit/Freight-Shipment-Assistant/shipment"
)

const shutdownTimeout = 10 * time.Second

type Deps struct {
	Chat      ChatService
	Extractor DocumentExtractor
	Store     shipment.Store
}

// NewRouter wires every route. Callers pick the gin mode.
func NewRouter(deps Deps) *gin.Engine {
	h := newHandler(deps)

	r := gin.New()
	r.Use(RequestID(), AccessLog(), Metrics(), Recovery())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/chat", h.Chat)
	api.POST("/extract", h.Extract)
	api.GET("/shipments", h.ListShipments)
	api.POST("/shipments", h.CreateShipment)

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logx.FromContext(ctx).Info().Str("addr", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logx.FromContext(ctx).Info().Msg("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
