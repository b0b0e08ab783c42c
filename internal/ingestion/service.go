package ingestion

import (
	"github.com/gin-gonic/gin"

	"github.com/saleslens-lab/saleslens/internal/core/storage"
)

type Service struct {
	store            storage.LedgerStore
	maxBodySizeBytes int
}

func NewService(store storage.LedgerStore, maxBodySizeMB int) *Service {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		store:            store,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	// Accepts a single record object or a batch array.
	r.POST("/v1/records", s.IngestHandler)
}
