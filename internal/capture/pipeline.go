// Package capture turns a window into a preview image through an ordered
// chain of strategies that ends in a fallback which cannot fail.
package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/registry"
	"golang.org/x/net/html"
)

// ErrUnavailable is returned by a strategy whose host capability is missing.
var ErrUnavailable = errors.New("capture strategy unavailable")

// ErrExhausted is returned when every fallible strategy failed.
var ErrExhausted = errors.New("all capture strategies failed")

// Request describes the window being captured. Content is a private clone
// owned by the capture job.
type Request struct {
	Window  registry.ID
	Title   string
	Icon    string
	Bounds  platform.Rect
	Content *html.Node
}

// Strategy is one step of the chain.
type Strategy interface {
	Name() string
	Capture(ctx context.Context, req Request) (platform.Image, error)
}

// Fallback is the last step. It always produces an image.
type Fallback interface {
	Name() string
	Render(req Request) platform.Image
}

// StrategyError records why a strategy did not produce an image.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Strategy, e.Err)
}

func (e *StrategyError) Unwrap() error { return e.Err }

// Screenshot is a stored capture result.
type Screenshot struct {
	Window     registry.ID
	Image      platform.Image
	Strategy   string
	CapturedAt time.Time
}

// DataURL encodes the image for an <img src>.
func (s Screenshot) DataURL() string {
	return DataURL(s.Image)
}

// DataURL encodes img as a base64 data URL.
func DataURL(img platform.Image) string {
	if img.Empty() {
		return ""
	}
	return "data:" + img.MIME + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// Result is what a pipeline run produced.
type Result struct {
	Image    platform.Image
	Strategy string
	Failures []*StrategyError
}

// Options configures a Pipeline.
type Options struct {
	Strategies []Strategy
	Fallback   Fallback
	// Timeout bounds each strategy. Zero means no per-strategy limit.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Pipeline runs strategies in order until one succeeds.
type Pipeline struct {
	strategies []Strategy
	fallback   Fallback
	timeout    time.Duration
	logger     *slog.Logger
}

// New creates a pipeline. A nil fallback defaults to the procedural renderer.
func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fb := opts.Fallback
	if fb == nil {
		fb = Procedural{}
	}
	return &Pipeline{
		strategies: opts.Strategies,
		fallback:   fb,
		timeout:    opts.Timeout,
		logger:     logger.With("component", "capture"),
	}
}

// FromHost builds the standard chain: native, rasterize, display, procedural.
func FromHost(host platform.Host, timeout time.Duration, logger *slog.Logger) *Pipeline {
	return New(Options{
		Strategies: []Strategy{
			Native{Capturer: host.Native},
			Rasterize{Rasterizer: host.Rasterizer},
			Display{Capturer: host.Display},
		},
		Fallback: Procedural{},
		Timeout:  timeout,
		Logger:   logger,
	})
}

// Capture runs the full chain. The only error it returns is the context's.
func (p *Pipeline) Capture(ctx context.Context, req Request) (Result, error) {
	res, err := p.CaptureStrict(ctx, req)
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	res.Image = p.fallback.Render(req)
	res.Strategy = p.fallback.Name()
	return res, nil
}

// CaptureStrict runs only the fallible strategies and reports ErrExhausted
// when none of them produced an image.
func (p *Pipeline) CaptureStrict(ctx context.Context, req Request) (Result, error) {
	var res Result
	for _, s := range p.strategies {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		img, err := p.run(ctx, s, req)
		if err == nil && img.Empty() {
			err = errors.New("empty image")
		}
		if err != nil {
			se := &StrategyError{Strategy: s.Name(), Err: err}
			res.Failures = append(res.Failures, se)
			if !errors.Is(err, ErrUnavailable) {
				p.logger.Debug("capture strategy failed", "window", req.Window, "strategy", s.Name(), "error", err)
			}
			continue
		}
		res.Image = img
		res.Strategy = s.Name()
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	errs := make([]error, 0, len(res.Failures)+1)
	errs = append(errs, ErrExhausted)
	for _, f := range res.Failures {
		errs = append(errs, f)
	}
	return res, errors.Join(errs...)
}

func (p *Pipeline) run(ctx context.Context, s Strategy, req Request) (img platform.Image, err error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			img = platform.Image{}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.Capture(ctx, req)
}
