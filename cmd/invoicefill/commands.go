package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-filler/internal/app"
	"github.com/garyjia/invoice-filler/internal/config"
	"github.com/garyjia/invoice-filler/internal/generator"
	"github.com/garyjia/invoice-filler/internal/intake"
	"github.com/garyjia/invoice-filler/internal/invoice"
	"github.com/garyjia/invoice-filler/internal/preview"
	"github.com/garyjia/invoice-filler/internal/worker"
	"github.com/garyjia/invoice-filler/pkg/utils"
)

func newCLI(in io.Reader, out io.Writer) *cli.App {
	return &cli.App{
		Name:      "invoicefill",
		Usage:     "fill the invoice PDF template",
		Reader:    in,
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "configs/config.yaml",
				Usage:   "configuration file; defaults and environment apply when it is missing",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log every stage on stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "generate an invoice from a .json or .xlsx form",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "input", Aliases: []string{"i"}, Required: true, Usage: "form file, repeat for a batch"},
					&cli.BoolFlag{Name: "totals", Usage: "compute line totals, net and remainder before drawing"},
					&cli.IntFlag{Name: "workers", Value: worker.DefaultWorkers, Usage: "concurrent generations of a batch"},
				},
				Action: generateAction,
			},
			{
				Name:   "prompt",
				Usage:  "ask for the invoice values on the terminal and generate it",
				Action: promptAction,
			},
			{
				Name:  "workbook",
				Usage: "write a blank spreadsheet form",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "facture.xlsx", Usage: "spreadsheet path"},
				},
				Action: workbookAction,
			},
			{
				Name:  "preview",
				Usage: "render the first page of an invoice to PNG",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "pdf", Required: true, Usage: "invoice PDF"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "PNG path, next to the PDF when empty"},
					&cli.Float64Flag{Name: "dpi", Value: preview.DefaultDPI, Usage: "raster resolution"},
				},
				Action: previewAction,
			},
			{
				Name:  "history",
				Usage: "list the generated invoices",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20},
					&cli.IntFlag{Name: "offset", Value: 0},
				},
				Action: historyAction,
			},
		},
	}
}

// session holds what every command needs
type session struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newSession(c *cli.Context) (*session, error) {
	logger, err := utils.NewCLILogger(c.Bool("verbose"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	path := c.String("config")
	cfg, found, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if !found {
		logger.Warn("Configuration file not found, using defaults", zap.String("path", path))
	}
	return &session{cfg: cfg, logger: logger}, nil
}

func (s *session) open(c *cli.Context) (*app.App, error) {
	return app.New(c.Context, s.cfg, s.logger)
}

func generateAction(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.logger.Sync()

	inputs := c.StringSlice("input")
	jobs := make([]worker.Job, 0, len(inputs))
	for _, path := range inputs {
		form, err := loadForm(path)
		if err != nil {
			return err
		}
		jobs = append(jobs, worker.Job{Source: path, Form: form})
	}
	if c.Bool("totals") {
		s.cfg.Output.AutoTotals = true
	}

	a, err := s.open(c)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(jobs) == 1 {
		return generate(c, a.Generator, jobs[0].Form)
	}

	outcomes, status := worker.NewBatchProcessor(a.Generator, c.Int("workers"), s.logger).Run(c.Context, jobs)
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(c.App.Writer, "%s : échec : %v\n", o.Source, o.Err)
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s : %s\n", o.Source, o.Result.OutputPath)
	}
	if status.FailedCount > 0 {
		return fmt.Errorf("%d of %d invoices failed: %w", status.FailedCount, status.ProcessedCount, status.LastError)
	}
	return nil
}

func promptAction(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.logger.Sync()

	prompter := intake.NewPrompter(c.App.Reader, c.App.Writer)
	form, err := prompter.Collect()
	if err != nil {
		return err
	}
	ok, err := prompter.Confirm(form)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.App.Writer, "Génération annulée.")
		return nil
	}

	a, err := s.open(c)
	if err != nil {
		return err
	}
	defer a.Close()

	return generate(c, a.Generator, form)
}

func generate(c *cli.Context, gen *generator.Generator, form invoice.InvoiceForm) error {
	result, err := gen.Generate(c.Context, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Facture générée : %s\n", result.OutputPath)
	if result.Totals.Net != "" {
		fmt.Fprintf(c.App.Writer, "Total net de taxes : %s\n", result.Totals.Net)
	}
	return nil
}

func loadForm(path string) (invoice.InvoiceForm, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return intake.LoadJSON(path)
	case ".xlsx":
		return intake.LoadWorkbook(path)
	default:
		return invoice.InvoiceForm{}, fmt.Errorf("unsupported form file %q: expected .json or .xlsx", path)
	}
}

func workbookAction(c *cli.Context) error {
	out := c.String("out")
	if err := intake.WriteBlankWorkbook(out, utils.Today(time.Now())); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Formulaire écrit : %s\n", out)
	return nil
}

func previewAction(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.logger.Sync()

	renderer := preview.NewRenderer(c.Float64("dpi"), s.logger)
	path, err := renderer.RenderPNG(c.String("pdf"), c.String("out"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Aperçu écrit : %s\n", path)
	return nil
}

func historyAction(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.logger.Sync()

	if !s.cfg.Database.Enabled {
		return errors.New("history is disabled (database.enabled is false)")
	}

	a, err := s.open(c)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.History.List(c.Context, c.Int("limit"), c.Int("offset"))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tNUMÉRO\tCLIENT\tNET\tFICHIER")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.CreatedAt.Local().Format("02/01/2006 15:04"), r.InvoiceNumber, r.ClientName, r.TotalNet, r.OutputPath)
	}
	return w.Flush()
}
