// File path: internal/render/render.go
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/sync/semaphore"

	"github.com/animalert/animalert/internal/common"
	"github.com/animalert/animalert/internal/common/telemetry"
)

// A4 in inches.
const (
	a4Width  = 8.27
	a4Height = 11.69
)

// Renderer prints HTML to PDF. Every call gets its own browser process;
// the semaphore only bounds how many run at once.
type Renderer struct {
	cfg Config
	sem *semaphore.Weighted
}

func New(cfg Config) *Renderer {
	cfg = DefaultConfig().Merge(cfg)
	return &Renderer{cfg: cfg, sem: semaphore.NewWeighted(int64(cfg.MaxConcurrent))}
}

// Render prints document to an A4 PDF with backgrounds. The browser is
// torn down on every return path, including timeout.
func (r *Renderer) Render(ctx context.Context, document string) (pdf []byte, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for render slot: %w", err)
	}
	defer r.sem.Release(1)

	ctx, end := telemetry.StartSpan(ctx, "render.pdf")
	start := time.Now()
	defer func() {
		telemetry.RecordRender(time.Since(start), err)
		end("bytes", len(pdf), "error", err != nil)
	}()

	l := launcher.New().Context(ctx).Headless(true).NoSandbox(r.cfg.NoSandbox)
	if r.cfg.Bin != "" {
		l = l.Bin(r.cfg.Bin)
	}
	defer l.Cleanup()
	defer l.Kill()
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	// Images and fonts end up in the PDF, so the idle wait must include them.
	wait := page.WaitRequestIdle(r.cfg.IdleWait, nil, nil, []proto.NetworkResourceType{
		proto.NetworkResourceTypeWebSocket,
		proto.NetworkResourceTypeEventSource,
	})
	if err := page.SetDocumentContent(document); err != nil {
		return nil, fmt.Errorf("set document content: %w", err)
	}
	wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("wait for network idle: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:      float64Ptr(a4Width),
		PaperHeight:     float64Ptr(a4Height),
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	pdf, err = io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	if !isPDF(pdf) {
		return nil, errors.New("renderer returned a non-pdf payload")
	}
	common.Component("render").Debug("render: pdf ready", "bytes", len(pdf), "dur", time.Since(start))
	return pdf, nil
}

func isPDF(data []byte) bool {
	return strings.HasPrefix(string(data[:min(len(data), 5)]), "%PDF-")
}

func float64Ptr(v float64) *float64 {
	return &v
}
