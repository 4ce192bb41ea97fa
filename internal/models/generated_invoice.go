package models

import "time"

// GeneratedInvoice is one successful generation kept in the history
type GeneratedInvoice struct {
	ID            int64     `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	ClientName    string    `json:"client_name"`
	OutputPath    string    `json:"output_path"`
	TotalNet      string    `json:"total_net"`
	Remainder     string    `json:"remainder"`
	PageWidth     float64   `json:"page_width"`
	PageHeight    float64   `json:"page_height"`
	OpCount       int       `json:"op_count"` // text operations drawn on the overlay
	CreatedAt     time.Time `json:"created_at"`
}
