package http

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/invoice-filler/internal/generator"
	"github.com/garyjia/invoice-filler/internal/intake"
	"github.com/garyjia/invoice-filler/internal/invoice"
	"github.com/garyjia/invoice-filler/internal/models"
	"github.com/garyjia/invoice-filler/internal/repository"
)

// InvoiceGenerator fills the invoice template
type InvoiceGenerator interface {
	Generate(ctx context.Context, form invoice.InvoiceForm) (*generator.Result, error)
	OutputPath(number string) string
}

// HistoryStore reads the generation history
type HistoryStore interface {
	List(ctx context.Context, limit, offset int) ([]*models.GeneratedInvoice, error)
	GetByInvoiceNumber(ctx context.Context, number string) (*models.GeneratedInvoice, error)
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	generator InvoiceGenerator
	history   HistoryStore
	logger    Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(generator InvoiceGenerator, history HistoryStore, logger Logger) *Handlers {
	return &Handlers{
		generator: generator,
		history:   history,
		logger:    logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	History   bool   `json:"history"`
}

// ListInvoicesRequest represents query parameters for listing invoices
type ListInvoicesRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			History:   h.history != nil,
		},
	})
}

// GenerateInvoice handles POST /api/invoices
func (h *Handlers) GenerateInvoice(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxFormBytes)
	form, err := intake.DecodeJSON(body)
	if err != nil {
		h.logger.Warn("Invalid invoice form", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid invoice form: " + err.Error(),
		})
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), form)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Invoice generation failed", "invoice_number", form.InvoiceNumber(), "error", err)
		}
		c.JSON(status, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    result,
	})
}

// ListInvoices handles GET /api/invoices
func (h *Handlers) ListInvoices(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	if h.history == nil {
		c.JSON(http.StatusOK, Response{Success: true, Data: []*models.GeneratedInvoice{}})
		return
	}

	invoices, err := h.history.List(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.logger.Error("Failed to list generated invoices", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to list invoices",
		})
		return
	}
	if invoices == nil {
		invoices = []*models.GeneratedInvoice{}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    invoices,
	})
}

// GetInvoice handles GET /api/invoices/:number
func (h *Handlers) GetInvoice(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "history is disabled"})
		return
	}

	record, err := h.history.GetByInvoiceNumber(c.Request.Context(), c.Param("number"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "invoice not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to get generated invoice", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to get invoice"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: record})
}

// DownloadInvoice handles GET /api/invoices/:number/pdf
func (h *Handlers) DownloadInvoice(c *gin.Context) {
	path := h.generator.OutputPath(c.Param("number"))

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "invoice not found"})
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}

// statusFor maps generation errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, invoice.ErrMissingRequiredField), errors.Is(err, invoice.ErrItemLimitExceeded):
		return http.StatusBadRequest
	case errors.Is(err, generator.ErrOutputBusy):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
