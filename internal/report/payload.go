// Package report turns analysis results into a narrative executive report.
// The narrative comes from an LLM runtime when one is reachable, and from a
// deterministic template otherwise.
package report

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/insightloom/internal/analysis"
	"github.com/KaramelBytes/insightloom/internal/insight"
)

// PromptActions is how many ranked actions the prompt embeds.
const PromptActions = 5

// Payload is everything the report writer knows about one dataset.
type Payload struct {
	ID          uuid.UUID                `json:"id"`
	Dataset     string                   `json:"dataset"`
	GeneratedAt time.Time                `json:"generated_at"`
	Summary     insight.ExecutiveSummary `json:"summary"`
	Anomalies   *analysis.AnomalyReport  `json:"anomalies"`
	Trends      *analysis.TrendReport    `json:"trends"`
	Actions     []insight.Action         `json:"actions"`
}

// BuildPayload assembles a payload. Actions are expected in priority order.
func BuildPayload(dataset string, summary insight.ExecutiveSummary, anomalies *analysis.AnomalyReport, trends *analysis.TrendReport, actions []insight.Action, now time.Time) *Payload {
	if anomalies == nil {
		anomalies = &analysis.AnomalyReport{}
	}
	if trends == nil {
		trends = &analysis.TrendReport{}
	}
	return &Payload{
		ID:          uuid.New(),
		Dataset:     dataset,
		GeneratedAt: now,
		Summary:     summary,
		Anomalies:   anomalies,
		Trends:      trends,
		Actions:     actions,
	}
}

// Counts returns the number of critical and high priority actions.
func (p *Payload) Counts() (critical, high int) {
	for _, a := range p.Actions {
		switch a.Priority {
		case insight.Critical:
			critical++
		case insight.High:
			high++
		}
	}
	return critical, high
}

func (p *Payload) topActions(n int) []insight.Action {
	if len(p.Actions) <= n {
		return p.Actions
	}
	return p.Actions[:n]
}

// block renders v as indented JSON for embedding in prompt text.
func block(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "(unavailable: " + err.Error() + ")"
	}
	return string(b)
}
