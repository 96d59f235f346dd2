package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"lotellar.backend/internal/infrastructure/blockchain"
	"lotellar.backend/pkg/logger"
)

const ledgerHealthy = "healthy"

type ledgerHealthChecker interface {
	GetHealth(ctx context.Context) (*blockchain.HealthResponse, error)
}

type storeCheck struct {
	name string
	ping func(ctx context.Context) error
}

// HealthHandler reports service, ledger RPC and backing store health
type HealthHandler struct {
	ledger  ledgerHealthChecker
	stores  []storeCheck
	service string
	version string
}

// NewHealthHandler creates a new health handler. ledger may be nil when the
// RPC endpoint is not configured.
func NewHealthHandler(ledger ledgerHealthChecker, service, version string) *HealthHandler {
	return &HealthHandler{ledger: ledger, service: service, version: version}
}

// WithStore adds a store that must answer ping for the service to be healthy
func (h *HealthHandler) WithStore(name string, ping func(ctx context.Context) error) *HealthHandler {
	h.stores = append(h.stores, storeCheck{name: name, ping: ping})
	return h
}

// GetHealth answers 503 when the ledger RPC or a store is unreachable or unhealthy
// GET /health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()
	body := gin.H{
		"status":  "ok",
		"service": h.service,
		"version": h.version,
	}
	healthy := true

	if h.ledger != nil {
		res, err := h.ledger.GetHealth(ctx)
		switch {
		case err != nil:
			logger.Warn(ctx, "Ledger health check failed", zap.Error(err))
			healthy = false
			body["ledger"] = gin.H{"status": "unreachable"}
		case res.Status != ledgerHealthy:
			healthy = false
			body["ledger"] = res
		default:
			body["ledger"] = res
		}
	}

	if len(h.stores) > 0 {
		stores := gin.H{}
		for _, s := range h.stores {
			if err := s.ping(ctx); err != nil {
				logger.Warn(ctx, "Store health check failed", zap.String("store", s.name), zap.Error(err))
				healthy = false
				stores[s.name] = "unreachable"
				continue
			}
			stores[s.name] = "ok"
		}
		body["stores"] = stores
	}

	if !healthy {
		body["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
