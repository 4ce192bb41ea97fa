// Package generator runs the fill pipeline: validate the form, render the text
// overlay and merge it onto the invoice template.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/invoice-filler/internal/invoice"
	"github.com/garyjia/invoice-filler/internal/models"
	"github.com/garyjia/invoice-filler/internal/overlay"
	"github.com/garyjia/invoice-filler/internal/pdf"
	"github.com/garyjia/invoice-filler/internal/storage"
)

// Output file naming
const (
	outputPrefix       = "INVOICE_"
	outputExtension    = ".pdf"
	UnnumberedFileName = outputPrefix + "SANS_NUMERO" + outputExtension
)

// OutputFileName returns the file name of the document generated for an invoice number
func OutputFileName(number string) string {
	safe := storage.SanitizeName(number)
	if safe == "" {
		return UnnumberedFileName
	}
	return outputPrefix + safe + outputExtension
}

// Config holds generator settings
type Config struct {
	TemplatePath string
	OutputDir    string
	// AutoTotals fills the net and remainder totals. The excl. tax total always
	// follows the line totals when any exists.
	AutoTotals bool
	FontFamily string
}

// Recorder keeps the history of generated documents
type Recorder interface {
	Create(ctx context.Context, inv *models.GeneratedInvoice) error
}

// Result describes a finished document
type Result struct {
	InvoiceNumber string         `json:"invoice_number"`
	FileName      string         `json:"file_name"`
	OutputPath    string         `json:"output_path"`
	PageBox       pdf.PageBox    `json:"page_box"`
	OpCount       int            `json:"op_count"`
	Totals        invoice.Totals `json:"totals"`
	Duration      time.Duration  `json:"duration"`
}

// Option configures a Generator
type Option func(*Generator)

// WithRecorder stores a history record after each successful run
func WithRecorder(r Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// WithRegistry replaces the template geometry
func WithRegistry(r *invoice.Registry) Option {
	return func(g *Generator) { g.registry = r }
}

// WithStageHook is called on every stage transition
func WithStageHook(fn func(number string, stage Stage)) Option {
	return func(g *Generator) { g.onStage = fn }
}

// Generator fills the invoice template. It is safe for concurrent use; two runs
// targeting the same output file are not allowed to overlap.
type Generator struct {
	cfg      Config
	registry *invoice.Registry
	engine   pdf.Engine
	measurer overlay.TextMeasurer
	renderer *overlay.Renderer
	files    *storage.LocalFileStorage
	folders  *storage.FolderManager
	recorder Recorder
	onStage  func(string, Stage)
	logger   *zap.Logger

	// output path -> struct{}
	busy sync.Map
}

// New creates a new Generator
func New(cfg Config, engine pdf.Engine, measurer overlay.TextMeasurer, logger *zap.Logger, opts ...Option) *Generator {
	g := &Generator{
		cfg:      cfg,
		registry: invoice.DefaultRegistry(),
		engine:   engine,
		measurer: measurer,
		files:    storage.NewLocalFileStorage(cfg.OutputDir, logger),
		folders:  storage.NewFolderManager(cfg.OutputDir, logger),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.renderer = overlay.NewRenderer(g.registry, measurer, cfg.FontFamily, logger)
	return g
}

// Registry returns the template geometry in use
func (g *Generator) Registry() *invoice.Registry {
	return g.registry
}

// OutputPath returns where the document of an invoice number is written
func (g *Generator) OutputPath(number string) string {
	return g.folders.PathFor(OutputFileName(number))
}

// Generate fills the template with form and writes INVOICE_<number>.pdf into the output directory.
// Errors are returned as *StageError; no file is left behind on failure.
func (g *Generator) Generate(ctx context.Context, form invoice.InvoiceForm) (*Result, error) {
	start := time.Now()
	number := form.InvoiceNumber()
	log := g.logger.With(zap.String("invoice_number", number))

	stage := StageIdle
	fail := func(err error) (*Result, error) {
		log.Error("Invoice generation failed", zap.Stringer("stage", stage), zap.Error(err))
		g.transition(number, StageFailed)
		return nil, &StageError{Stage: stage, Err: err}
	}
	enter := func(s Stage) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stage = s
		g.transition(number, s)
		log.Debug("Entering stage", zap.Stringer("stage", s))
		return nil
	}

	// Formatting
	if err := enter(StageFormatting); err != nil {
		return fail(err)
	}
	if err := form.Validate(g.registry); err != nil {
		return fail(err)
	}
	var totals invoice.Totals
	if g.cfg.AutoTotals {
		form = invoice.CompleteTotals(form)
		totals = invoice.Totals{
			ExclTax:   form.Field(invoice.FieldTotalExclTax),
			Net:       form.Field(invoice.FieldTotalNet),
			Remainder: form.Field(invoice.FieldRemainder),
		}
	} else {
		form = invoice.CompleteExclTax(form)
		totals.ExclTax = form.Field(invoice.FieldTotalExclTax)
	}

	outputPath := g.OutputPath(number)
	if _, loaded := g.busy.LoadOrStore(outputPath, struct{}{}); loaded {
		return fail(fmt.Errorf("%w: %s", ErrOutputBusy, outputPath))
	}
	defer g.busy.Delete(outputPath)

	// Rendering
	if err := enter(StageRendering); err != nil {
		return fail(err)
	}
	box, err := g.engine.ReadPageBox(g.cfg.TemplatePath)
	if err != nil {
		return fail(err)
	}
	ops := g.renderer.Render(form)
	overlayPage, err := g.drawOverlay(box, ops)
	if err != nil {
		return fail(err)
	}

	// Merging
	if err := enter(StageMerging); err != nil {
		return fail(err)
	}
	if err := g.folders.EnsureOutputFolder(); err != nil {
		return fail(fmt.Errorf("%w: %w", ErrOutputWrite, err))
	}
	err = g.files.SaveStream(outputPath, func(w io.Writer) error {
		return g.engine.Composite(g.cfg.TemplatePath, overlayPage, w)
	})
	if err != nil {
		if errors.Is(err, pdf.ErrTemplateUnavailable) {
			return fail(err)
		}
		return fail(fmt.Errorf("%w: %w", ErrOutputWrite, err))
	}

	result := &Result{
		InvoiceNumber: number,
		FileName:      OutputFileName(number),
		OutputPath:    outputPath,
		PageBox:       box,
		OpCount:       len(ops),
		Totals:        totals,
		Duration:      time.Since(start),
	}
	stage = StageDone
	g.transition(number, StageDone)

	g.record(ctx, form, result, log)

	log.Info("Invoice generated",
		zap.String("output_path", outputPath),
		zap.Int("op_count", len(ops)),
		zap.Duration("duration", result.Duration))
	return result, nil
}

func (g *Generator) drawOverlay(box pdf.PageBox, ops []overlay.DrawOp) ([]byte, error) {
	canvas, err := g.engine.NewCanvas(box)
	if err != nil {
		return nil, err
	}
	for _, op := range ops {
		if err := canvas.Draw(op); err != nil {
			return nil, err
		}
	}
	return canvas.Bytes()
}

func (g *Generator) record(ctx context.Context, form invoice.InvoiceForm, result *Result, log *zap.Logger) {
	if g.recorder == nil {
		return
	}
	entry := &models.GeneratedInvoice{
		InvoiceNumber: result.InvoiceNumber,
		ClientName:    form.Field(invoice.FieldClientName),
		OutputPath:    result.OutputPath,
		TotalNet:      form.Field(invoice.FieldTotalNet),
		Remainder:     form.Field(invoice.FieldRemainder),
		PageWidth:     result.PageBox.Width,
		PageHeight:    result.PageBox.Height,
		OpCount:       result.OpCount,
	}
	if err := g.recorder.Create(ctx, entry); err != nil {
		log.Warn("Failed to record generated invoice", zap.Error(err))
	}
}

func (g *Generator) transition(number string, s Stage) {
	if g.onStage != nil {
		g.onStage(number, s)
	}
}
