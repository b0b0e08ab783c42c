package reporting

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	httperr "github.com/saleslens-lab/saleslens/internal/core/errors"
	"github.com/saleslens-lab/saleslens/internal/core/reports"
)

// RegisterRoutes registers all reporting API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/reports/:name", s.HandleRunReport)
	r.GET("/v1/kpis", s.HandleQueryKPIs)
	r.GET("/v1/trends/:name", s.HandleTrend)
	r.GET("/v1/export/valid-sales", s.HandleExportValidSales)
}

// HandleRunReport handles GET /v1/reports/:name
func (s *Service) HandleRunReport(c *gin.Context) {
	resp, err := s.RunReport(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeQueryError(c, err, "Failed to run report")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleQueryKPIs handles GET /v1/kpis
// Query parameters: dimensions (comma-separated), sort_by, top_n
func (s *Service) HandleQueryKPIs(c *gin.Context) {
	var query struct {
		Dimensions string `form:"dimensions" binding:"required"`
		SortBy     string `form:"sort_by"`
		TopN       int    `form:"top_n"`
	}

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	dimensions := splitDimensions(query.Dimensions)

	resp, err := s.QueryKPIs(c.Request.Context(), dimensions, query.SortBy, query.TopN)
	if err != nil {
		writeQueryError(c, err, "Failed to query KPIs")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleTrend handles GET /v1/trends/:name
func (s *Service) HandleTrend(c *gin.Context) {
	resp, err := s.Trend(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeQueryError(c, err, "Failed to run trend report")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleExportValidSales handles GET /v1/export/valid-sales
func (s *Service) HandleExportValidSales(c *gin.Context) {
	resp, err := s.ExportValidSales(c.Request.Context())
	if err != nil {
		writeQueryError(c, err, "Failed to export valid sales")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func splitDimensions(raw string) []string {
	parts := strings.Split(raw, ",")
	dimensions := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			dimensions = append(dimensions, trimmed)
		}
	}
	return dimensions
}

func writeQueryError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, reports.ErrNotFound):
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpReportNotFoundError,
			Message:   "Report not found",
			Details:   err.Error(),
		})
	case errors.Is(err, ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid report query",
			Details:   err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   message,
			Details:   err.Error(),
		})
	}
}
