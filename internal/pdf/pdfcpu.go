package pdf

import (
	"bytes"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/validate"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// stampDescription places the overlay page unscaled on the bottom left corner of the template page
const stampDescription = "scalefactor:1 abs, position:bl, offset:0 0, rotation:0, opacity:1"

// Backend implements Engine with pdfcpu for reading and compositing and gofpdf for drawing
type Backend struct {
	metrics *Metrics
	tempDir string
	logger  *zap.Logger
}

// NewBackend creates a new Backend. Overlay pages are staged in tempDir while compositing;
// an empty tempDir selects the system default.
func NewBackend(metrics *Metrics, tempDir string, logger *zap.Logger) *Backend {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Backend{
		metrics: metrics,
		tempDir: tempDir,
		logger:  logger,
	}
}

// Metrics returns the font metrics used to anchor text
func (b *Backend) Metrics() *Metrics {
	return b.metrics
}

func (b *Backend) ReadPageBox(path string) (PageBox, error) {
	ctx, err := readTemplate(path)
	if err != nil {
		return PageBox{}, err
	}

	dims, err := ctx.XRefTable.PageDims()
	if err != nil {
		return PageBox{}, &TemplateError{Path: path, Err: errors.Wrap(err, "read page dimensions")}
	}
	if len(dims) == 0 {
		return PageBox{}, &TemplateError{Path: path, Err: errors.New("document has no pages")}
	}

	box := PageBox{Width: dims[0].Width, Height: dims[0].Height}
	b.logger.Debug("Read template page box",
		zap.String("path", path),
		zap.Float64("width", box.Width),
		zap.Float64("height", box.Height))
	return box, nil
}

func (b *Backend) NewCanvas(box PageBox) (Canvas, error) {
	if box.Width <= 0 || box.Height <= 0 {
		return nil, errors.Wrapf(ErrOverlay, "invalid page box %.2fx%.2f", box.Width, box.Height)
	}
	return newCanvas(box, b.metrics), nil
}

func (b *Backend) Composite(templatePath string, overlay []byte, w io.Writer) error {
	ctx, err := readTemplate(templatePath)
	if err != nil {
		return err
	}

	// pdfcpu loads PDF watermarks from a file
	stage, err := os.CreateTemp(b.tempDir, "overlay-*.pdf")
	if err != nil {
		return errors.Wrapf(ErrComposite, "stage overlay: %v", err)
	}
	stagePath := stage.Name()
	defer os.Remove(stagePath)

	if _, err := stage.Write(overlay); err != nil {
		stage.Close()
		return errors.Wrapf(ErrComposite, "stage overlay: %v", err)
	}
	if err := stage.Close(); err != nil {
		return errors.Wrapf(ErrComposite, "stage overlay: %v", err)
	}

	wm, err := api.PDFWatermark(stagePath, stampDescription, true, false, types.POINTS)
	if err != nil {
		return errors.Wrapf(ErrComposite, "build overlay stamp: %v", err)
	}

	if err := pdfcpu.AddWatermarks(ctx, types.IntSet{1: true}, wm); err != nil {
		return errors.Wrapf(ErrComposite, "stamp template page: %v", err)
	}

	if err := api.WriteContext(ctx, w); err != nil {
		return errors.Wrapf(ErrComposite, "write document: %v", err)
	}

	b.logger.Debug("Composited overlay onto template",
		zap.String("template", templatePath),
		zap.Int("overlay_bytes", len(overlay)))
	return nil
}

func readTemplate(path string) (*model.Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &TemplateError{Path: path, Err: err}
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := pdfcpu.Read(bytes.NewReader(data), conf)
	if err != nil {
		return nil, &TemplateError{Path: path, Err: errors.Wrap(err, "parse")}
	}
	if err := validate.XRefTable(ctx.XRefTable); err != nil {
		return nil, &TemplateError{Path: path, Err: errors.Wrap(err, "validate")}
	}
	return ctx, nil
}
