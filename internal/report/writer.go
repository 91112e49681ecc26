package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/insightloom/internal/ai"
	"github.com/KaramelBytes/insightloom/internal/utils"
)

// ErrOffline is the fallback cause when no runtime is configured.
var ErrOffline = errors.New("no model runtime configured")

// DefaultTimeout bounds a single report generation.
const DefaultTimeout = 60 * time.Second

// Options configures model calls.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Result is the outcome of one generation. When Fallback is set, Text holds
// the templated report and Err the reason the model was not used.
type Result struct {
	ID          uuid.UUID `json:"id"`
	Text        string    `json:"text"`
	Fallback    bool      `json:"fallback"`
	Err         error     `json:"-"`
	ErrMessage  string    `json:"error,omitempty"`
	Model       string    `json:"model,omitempty"`
	Usage       ai.Usage  `json:"usage"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Writer produces executive reports from payloads.
type Writer struct {
	rt     ai.Runtime
	opt    Options
	logger *zap.Logger
	now    func() time.Time
}

// NewWriter returns a Writer. A nil runtime always produces the fallback report.
func NewWriter(rt ai.Runtime, opt Options, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opt.Timeout <= 0 {
		opt.Timeout = DefaultTimeout
	}
	return &Writer{rt: rt, opt: opt, logger: logger, now: time.Now}
}

// WithClock replaces the clock used for generated-at stamps.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// Generate asks the runtime for a report and falls back to the template on
// any failure. It never returns partial model output.
func (w *Writer) Generate(ctx context.Context, p *Payload) Result {
	res := Result{ID: p.ID, Model: w.opt.Model}
	text, usage, err := w.callModel(ctx, p)
	res.GeneratedAt = w.now()
	if err != nil {
		w.logger.Warn("report generation fell back to template",
			zap.String("dataset", p.Dataset), zap.String("model", w.opt.Model), zap.Error(err))
		res.Fallback = true
		res.Err = err
		res.ErrMessage = err.Error()
		res.Text = Fallback(p, res.GeneratedAt)
		return res
	}
	w.logger.Info("report generated",
		zap.String("dataset", p.Dataset), zap.String("model", w.opt.Model),
		zap.Int("prompt_tokens", usage.PromptTokens), zap.Int("completion_tokens", usage.CompletionTokens))
	res.Text = text
	res.Usage = usage
	return res
}

func (w *Writer) callModel(ctx context.Context, p *Payload) (string, ai.Usage, error) {
	if w.rt == nil {
		return "", ai.Usage{}, ErrOffline
	}
	prompt := Prompt(p)
	tokens := utils.CountTokens(systemPrompt) + utils.CountTokens(prompt)
	if fits, known := ai.FitsContext(w.opt.Model, tokens, w.opt.MaxTokens); known && !fits {
		mi, _ := ai.LookupModel(w.opt.Model)
		budget := mi.ContextTokens - w.opt.MaxTokens - utils.CountTokens(systemPrompt)
		w.logger.Warn("prompt exceeds model context window, truncating",
			zap.String("model", w.opt.Model), zap.Int("prompt_tokens", tokens), zap.Int("budget", budget))
		if budget > 0 {
			prompt = utils.TruncateToTokenLimit(prompt, budget)
		}
	}
	ctx, cancel := context.WithTimeout(ctx, w.opt.Timeout)
	defer cancel()
	resp, err := w.rt.Generate(ctx, ai.GenerateRequest{
		Model: w.opt.Model,
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   w.opt.MaxTokens,
		Temperature: w.opt.Temperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ai.Usage{}, fmt.Errorf("report timed out after %s: %w", w.opt.Timeout, err)
		}
		return "", ai.Usage{}, fmt.Errorf("generate report: %w", err)
	}
	text, err := resp.Content()
	if err != nil {
		return "", ai.Usage{}, err
	}
	return text, resp.Usage, nil
}
