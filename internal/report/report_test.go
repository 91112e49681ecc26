package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/KaramelBytes/insightloom/internal/ai"
	"github.com/KaramelBytes/insightloom/internal/analysis"
	"github.com/KaramelBytes/insightloom/internal/insight"
	"github.com/KaramelBytes/insightloom/internal/utils"
)

type ipv4Server struct {
	URL string
	srv *http.Server
}

func newIPv4Server(t *testing.T, handler http.Handler) *ipv4Server {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
			t.Skipf("skipping test: cannot open local listener (%v)", err)
		}
		t.Fatalf("listen tcp4: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(fmt.Sprintf("test server serve: %v", err))
		}
	}()
	return &ipv4Server{URL: "http://" + ln.Addr().String(), srv: srv}
}

func (s *ipv4Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}

var fixedNow = time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

func samplePayload() *Payload {
	summary := insight.ExecutiveSummary{
		DatasetSize: "120 records covering 4 different measurements",
		Quality:     insight.QualityBlock{Score: 91.5, Grade: "Very Good", Recommendation: "Minor improvements needed, but generally reliable."},
		KeyMetrics: []insight.KeyMetric{
			{Name: "Revenue", Average: 1520.456, Trend: "Increasing"},
			{Name: "Cost", Average: 310, Trend: "Stable"},
		},
		Alerts:        []string{"1 metric(s) showing decline - requires immediate investigation"},
		Opportunities: []string{"1 metric(s) growing - identify and replicate success factors"},
	}
	actions := []insight.Action{
		{Category: "Data Quality Crisis", Action: "Urgently fix data collection for 'Region'", Reason: "50.0% of Region data is missing", QuickWin: "Audit data entry", ExpectedBenefit: "Reliable reporting", Priority: insight.Critical, Owner: "Data Team", Timeline: "This week"},
		{Category: "Concentration Risk", Action: "Diversify beyond 'north' in Region", Priority: insight.High, Owner: "Strategy", Timeline: "2 weeks"},
		{Category: "Growth Opportunity", Action: "Scale Revenue", Priority: insight.Strategic, Owner: "Sales", Timeline: "Quarter"},
		{Category: "Strategic Insight", Action: "Leverage relationship between revenue & cost", Priority: insight.Strategic, Owner: "Finance", Timeline: "Quarter"},
	}
	anomalies := &analysis.AnomalyReport{
		Missing:    analysis.MissingPatterns{TotalMissingCells: 60},
		Duplicates: analysis.DuplicateInfo{Count: 2, Percentage: 1.7},
	}
	return BuildPayload("sales.csv", summary, anomalies, nil, actions, fixedNow)
}

func TestPromptCarriesSectionsAndData(t *testing.T) {
	p := samplePayload()
	prompt := Prompt(p)
	for _, s := range Sections {
		if !strings.Contains(prompt, "**"+s+"**") {
			t.Fatalf("prompt missing section %q", s)
		}
	}
	for _, want := range []string{"91.5% (Very Good)", "60 cells missing", "2 duplicate records", `"name": "Revenue"`, "Urgently fix data collection"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
	if !strings.HasSuffix(prompt, "Begin the report now:") {
		t.Fatalf("prompt tail = %q", prompt[len(prompt)-40:])
	}
}

func TestPayloadJSON(t *testing.T) {
	p := samplePayload()
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back["dataset"] != "sales.csv" || back["id"] == "" {
		t.Fatalf("payload json = %s", b)
	}
	if c, h := p.Counts(); c != 1 || h != 1 {
		t.Fatalf("counts = %d, %d", c, h)
	}
}

func TestFallbackIsDeterministic(t *testing.T) {
	p := samplePayload()
	a, b := Fallback(p, fixedNow), Fallback(p, fixedNow)
	if a != b {
		t.Fatalf("fallback not deterministic")
	}
	for _, want := range []string{
		"Generated: March 05, 2024 at 02:30 PM",
		"**91.5%**",
		"**Revenue:** Increasing (Average: 1520.46)",
		"### 1. Urgently fix data collection for 'Region'",
		"**Owner:** Data Team | **Timeline:** This week",
	} {
		if !strings.Contains(a, want) {
			t.Fatalf("fallback missing %q:\n%s", want, a)
		}
	}
	if strings.Contains(a, "### 4.") {
		t.Fatalf("fallback should list three actions")
	}
}

func TestOnePager(t *testing.T) {
	p := samplePayload()
	out := OnePager(p, fixedNow)
	for _, want := range []string{"March 05, 2024", "**Critical Issues:** 1", "**Quick Wins Available:** 1", "1. **Revenue** is increasing", "Your data is in good shape"} {
		if !strings.Contains(out, want) {
			t.Fatalf("one-pager missing %q:\n%s", want, out)
		}
	}
	p.Summary.Quality.Score = 85
	if out := OnePager(p, fixedNow); !strings.Contains(out, "needs attention") {
		t.Fatalf("expected attention bottom line at score 85")
	}
}

func TestGenerateUsesModelOutput(t *testing.T) {
	var got ai.GenerateRequest
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(ai.GenerateResponse{
			Choices: []ai.Choice{{Message: ai.Message{Role: "assistant", Content: "I analyzed your data."}}},
			Usage:   ai.Usage{PromptTokens: 900, CompletionTokens: 300},
		})
	}))
	defer srv.Close()

	rt := ai.NewClientWithBaseURL("key", 2*time.Second, 1, 0, 0, srv.URL)
	w := NewWriter(rt, Options{Model: "test-model", MaxTokens: 400}, nil).WithClock(func() time.Time { return fixedNow })
	res := w.Generate(context.Background(), samplePayload())
	if res.Fallback || res.Err != nil {
		t.Fatalf("unexpected fallback: %v", res.Err)
	}
	if res.Text != "I analyzed your data." || res.Usage.CompletionTokens != 300 || !res.GeneratedAt.Equal(fixedNow) {
		t.Fatalf("result = %+v", res)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.MaxTokens != 400 {
		t.Fatalf("request = %+v", got)
	}
}

func TestGenerateFallsBackOnServerError(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "boom"}})
	}))
	defer srv.Close()

	rt := ai.NewClientWithBaseURL("key", 2*time.Second, 1, 0, 0, srv.URL)
	p := samplePayload()
	res := NewWriter(rt, Options{Model: "m"}, nil).WithClock(func() time.Time { return fixedNow }).Generate(context.Background(), p)
	if !res.Fallback {
		t.Fatalf("expected fallback")
	}
	var se *ai.ServerError
	if !errors.As(res.Err, &se) || !strings.Contains(res.ErrMessage, "boom") {
		t.Fatalf("cause = %v", res.Err)
	}
	if res.Text != Fallback(p, fixedNow) {
		t.Fatalf("fallback text mismatch")
	}
}

func TestGenerateFallsBackOnTimeout(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	rt := ai.NewClientWithBaseURL("key", 5*time.Second, 1, 0, 0, srv.URL)
	w := NewWriter(rt, Options{Model: "m", Timeout: 50 * time.Millisecond}, nil)
	start := time.Now()
	res := w.Generate(context.Background(), samplePayload())
	if !res.Fallback || !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Fatalf("expected timeout fallback, got fallback=%v err=%v", res.Fallback, res.Err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("timeout not enforced: %v", time.Since(start))
	}
	if !strings.HasPrefix(res.Text, "# EXECUTIVE BUSINESS REPORT") {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestGenerateOffline(t *testing.T) {
	res := NewWriter(nil, Options{}, nil).Generate(context.Background(), samplePayload())
	if !res.Fallback || !errors.Is(res.Err, ErrOffline) {
		t.Fatalf("result = %+v", res)
	}
}

func TestGenerateTruncatesOversizedPrompt(t *testing.T) {
	var got ai.GenerateRequest
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(ai.GenerateResponse{
			Choices: []ai.Choice{{Message: ai.Message{Role: "assistant", Content: "short report"}}},
		})
	}))
	defer srv.Close()

	const model, maxTokens = "phi3:mini-4k-instruct", 3900
	mi, ok := ai.LookupModel(model)
	if !ok {
		t.Fatalf("model %s not in catalog", model)
	}
	budget := mi.ContextTokens - maxTokens - utils.CountTokens(systemPrompt)
	p := samplePayload()
	full := Prompt(p)
	if utils.CountTokens(full) <= budget {
		t.Fatalf("fixture prompt too small to exercise truncation")
	}

	rt := ai.NewClientWithBaseURL("key", 2*time.Second, 1, 0, 0, srv.URL)
	res := NewWriter(rt, Options{Model: model, MaxTokens: maxTokens}, nil).Generate(context.Background(), p)
	if res.Fallback {
		t.Fatalf("unexpected fallback: %v", res.Err)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("request = %+v", got)
	}
	sent := got.Messages[1].Content
	if utils.CountTokens(sent) > budget || !strings.HasPrefix(full, sent) {
		t.Fatalf("prompt not truncated: %d tokens, budget %d", utils.CountTokens(sent), budget)
	}
}
