package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/invoice-filler/internal/models"
)

// ErrNotFound is returned when no history record matches
var ErrNotFound = errors.New("record not found")

// GeneratedInvoiceRepository handles generation history database operations
type GeneratedInvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewGeneratedInvoiceRepository creates a new generated invoice repository
func NewGeneratedInvoiceRepository(db *sql.DB, logger *zap.Logger) *GeneratedInvoiceRepository {
	return &GeneratedInvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a history record and sets its ID
func (r *GeneratedInvoiceRepository) Create(ctx context.Context, inv *models.GeneratedInvoice) error {
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO generated_invoices (
			invoice_number, client_name, output_path, total_net, remainder,
			page_width, page_height, op_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		inv.InvoiceNumber,
		inv.ClientName,
		inv.OutputPath,
		inv.TotalNet,
		inv.Remainder,
		inv.PageWidth,
		inv.PageHeight,
		inv.OpCount,
		inv.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create generated invoice record", zap.Error(err))
		return fmt.Errorf("failed to create generated invoice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	inv.ID = id
	return nil
}

// List returns history records, newest first
func (r *GeneratedInvoiceRepository) List(ctx context.Context, limit, offset int) ([]*models.GeneratedInvoice, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, invoice_number, client_name, output_path, total_net, remainder,
			page_width, page_height, op_count, created_at
		FROM generated_invoices
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list generated invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*models.GeneratedInvoice
	for rows.Next() {
		inv, err := scanGeneratedInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// GetByInvoiceNumber returns the most recent record for an invoice number
func (r *GeneratedInvoiceRepository) GetByInvoiceNumber(ctx context.Context, number string) (*models.GeneratedInvoice, error) {
	query := `
		SELECT id, invoice_number, client_name, output_path, total_net, remainder,
			page_width, page_height, op_count, created_at
		FROM generated_invoices
		WHERE invoice_number = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	inv, err := scanGeneratedInvoice(r.db.QueryRowContext(ctx, query, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: invoice %s", ErrNotFound, number)
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneratedInvoice(row rowScanner) (*models.GeneratedInvoice, error) {
	inv := &models.GeneratedInvoice{}
	err := row.Scan(
		&inv.ID,
		&inv.InvoiceNumber,
		&inv.ClientName,
		&inv.OutputPath,
		&inv.TotalNet,
		&inv.Remainder,
		&inv.PageWidth,
		&inv.PageHeight,
		&inv.OpCount,
		&inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan generated invoice: %w", err)
	}
	return inv, nil
}
