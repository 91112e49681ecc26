// Package pipeline owns one loaded dataset and runs the analysis stages over it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/insightloom/internal/analysis"
	"github.com/KaramelBytes/insightloom/internal/chart"
	"github.com/KaramelBytes/insightloom/internal/cleaner"
	"github.com/KaramelBytes/insightloom/internal/dataset"
	"github.com/KaramelBytes/insightloom/internal/insight"
	"github.com/KaramelBytes/insightloom/internal/report"
)

// TopActionCount is the size of the prioritized action view.
const TopActionCount = 3

// Options configures a Session.
type Options struct {
	// Limits defaults to analysis.DefaultLimits when nil.
	Limits    *analysis.Limits
	Delimiter rune
	Logger    *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Step records one applied cleaning run.
type Step struct {
	At      time.Time       `json:"at"`
	Options cleaner.Options `json:"options"`
	Report  *cleaner.Report `json:"report"`
}

// snapshot is the immutable (data, types, profile) triple. It is replaced
// as a whole, never edited in place.
type snapshot struct {
	data    *dataset.Dataset
	types   analysis.TypeMap
	profile *analysis.DatasetProfile
}

// Session is the context object for one dataset: it owns the working copy
// and its cleaning history.
type Session struct {
	ID     uuid.UUID
	Source string

	limits  analysis.Limits
	logger  *zap.Logger
	cleaner *cleaner.Cleaner
	now     func() time.Time

	mu      sync.RWMutex
	snap    snapshot
	history []Step
}

// Open loads path and starts a session over it.
func Open(path string, opt Options) (*Session, error) {
	ds, err := dataset.LoadFile(path, dataset.LoadOptions{Delimiter: opt.Delimiter})
	if err != nil {
		return nil, err
	}
	return New(ds, opt), nil
}

// New starts a session over an already loaded dataset.
func New(ds *dataset.Dataset, opt Options) *Session {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	limits := analysis.DefaultLimits()
	if opt.Limits != nil {
		limits = *opt.Limits
	}
	s := &Session{
		ID:     uuid.New(),
		Source: ds.Name,
		limits: limits,
		now:    opt.Now,
	}
	s.logger = opt.Logger.Named("pipeline").With(zap.String("session", s.ID.String()))
	s.cleaner = cleaner.New(opt.Logger.Named("cleaner"))
	s.snap = build(ds)
	s.logger.Debug("session opened",
		zap.String("source", s.Source), zap.Int("rows", ds.Rows()), zap.Int("cols", ds.NumCols()))
	return s
}

func build(ds *dataset.Dataset) snapshot {
	types := analysis.InferTypes(ds)
	return snapshot{data: ds, types: types, profile: analysis.Profile(ds, types)}
}

func (s *Session) current() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Dataset returns the current working dataset. Callers must not modify it.
func (s *Session) Dataset() *dataset.Dataset { return s.current().data }

// Types returns the current column classification.
func (s *Session) Types() analysis.TypeMap { return s.current().types }

// Profile returns the current dataset profile.
func (s *Session) Profile() *analysis.DatasetProfile { return s.current().profile }

// History returns the applied cleaning steps, oldest first.
func (s *Session) History() []Step {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Step(nil), s.history...)
}

// Clean applies a cleaning run. The new dataset, its types and profile are
// published together only when the run succeeds.
func (s *Session) Clean(opt cleaner.Options) (*cleaner.Report, error) {
	cur := s.current()
	out, rep, err := s.cleaner.Clean(cur.data, cur.types, opt)
	if err != nil {
		return nil, fmt.Errorf("clean %s: %w", s.Source, err)
	}
	next := build(out)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.data != cur.data {
		return nil, errors.New("dataset changed during cleaning")
	}
	s.snap = next
	s.history = append(s.history, Step{At: s.now(), Options: opt, Report: rep})
	return rep, nil
}

// Analysis is the full result of one analysis pass.
type Analysis struct {
	SessionID   uuid.UUID                `json:"session_id"`
	Dataset     string                   `json:"dataset"`
	GeneratedAt time.Time                `json:"generated_at"`
	Profile     *analysis.DatasetProfile `json:"profile"`
	Anomalies   *analysis.AnomalyReport  `json:"anomalies"`
	Trends      *analysis.TrendReport    `json:"trends"`
	Actions     []insight.Action         `json:"actions"`
	Top         []insight.Action         `json:"top_actions"`
	Summary     insight.ExecutiveSummary `json:"executive_summary"`
	Governance  float64                  `json:"governance_score"`

	snap snapshot
}

// Analyze runs the anomaly detector and the trend analyzer concurrently over
// the current snapshot, then derives actions and the executive summary.
func (s *Session) Analyze(ctx context.Context) (*Analysis, error) {
	cur := s.current()
	a := &Analysis{SessionID: s.ID, Dataset: s.Source, GeneratedAt: s.now(), Profile: cur.profile, snap: cur}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		a.Anomalies = analysis.DetectAnomalies(cur.data, cur.types, s.limits)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		a.Trends = analysis.AnalyzeTrends(cur.data, cur.types, s.limits)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze %s: %w", s.Source, err)
	}

	a.Actions = insight.GenerateActions(a.Profile, a.Trends)
	a.Top = insight.TopActions(a.Actions, TopActionCount)
	a.Summary = insight.Summarize(a.Profile, a.Trends)
	a.Governance = insight.GovernanceScore(a.Profile)
	s.logger.Info("analysis complete",
		zap.Int("actions", len(a.Actions)),
		zap.Float64("quality", a.Anomalies.Score.Overall),
		zap.Int("outliers", a.Anomalies.TotalOutliers()))
	return a, nil
}

// Charts returns renderer-ready payloads for the analyzed snapshot.
func (a *Analysis) Charts() *chart.Bundle {
	return chart.Build(a.snap.data, a.snap.types, a.Anomalies, a.Trends)
}

// Payload returns the report writer input for this analysis.
func (a *Analysis) Payload() *report.Payload {
	return report.BuildPayload(a.Dataset, a.Summary, a.Anomalies, a.Trends, a.Actions, a.GeneratedAt)
}
