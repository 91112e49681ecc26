package insight

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/insightloom/internal/analysis"
	"github.com/KaramelBytes/insightloom/internal/dataset"
)

func mixedInputs() (*analysis.DatasetProfile, *analysis.TrendReport) {
	p := &analysis.DatasetProfile{
		RowCount:     10,
		ColumnCount:  2,
		TotalMissing: 5,
		Order:        []string{"region", "sales"},
		Columns: map[string]analysis.ColumnProfile{
			"region": {Name: "region", MissingCount: 5, MissingPercentage: 50},
			"sales":  {Name: "sales"},
		},
	}
	t := &analysis.TrendReport{
		Numeric: []analysis.TrendInfo{
			{Column: "sales", Direction: analysis.Increasing, CoefficientOfVariation: 20},
			{Column: "cost", Direction: analysis.Decreasing, CoefficientOfVariation: 20},
		},
		Distributions: []analysis.DistributionInfo{
			{Column: "region", MostCommon: "north", Concentration: 80},
		},
		Correlations: []analysis.CorrelationEntry{
			{A: "sales", B: "cost", Coefficient: 0.9, Strength: analysis.StrongPositive},
		},
	}
	return p, t
}

func TestGenerateActionsOrdering(t *testing.T) {
	p, tr := mixedInputs()
	actions := GenerateActions(p, tr)
	if len(actions) != 5 {
		t.Fatalf("actions = %d, want 5: %+v", len(actions), actions)
	}
	seenNonCritical := false
	for _, a := range actions {
		if a.Priority != Critical {
			seenNonCritical = true
		} else if seenNonCritical {
			t.Fatalf("critical action after lower tier: %+v", actions)
		}
	}
	want := []string{"Data Quality Crisis", "Performance Alert", "Concentration Risk", "Growth Opportunity", "Strategic Insight"}
	for i, w := range want {
		if actions[i].Category != w {
			t.Fatalf("action %d = %q, want %q", i, actions[i].Category, w)
		}
	}
	if actions[0].Action != "Urgently fix data collection for 'Region'" {
		t.Fatalf("action text = %q", actions[0].Action)
	}
	if actions[2].Action != "Diversify beyond 'north' in Region" || actions[2].Timeline != "Start diversification within 2 weeks" {
		t.Fatalf("concentration action = %+v", actions[2])
	}
	if actions[4].Action != "Leverage relationship between sales & cost" {
		t.Fatalf("correlation action = %q", actions[4].Action)
	}
}

func TestTopActionsBackfill(t *testing.T) {
	p, tr := mixedInputs()
	top := TopActions(GenerateActions(p, tr), 3)
	if len(top) != 3 || top[2].Category != "Concentration Risk" {
		t.Fatalf("top = %+v", top)
	}
	only := []Action{{Category: "s1", Priority: Strategic}, {Category: "h", Priority: High}, {Category: "s2", Priority: Strategic}}
	SortByPriority(only)
	top = TopActions(only, 3)
	if len(top) != 3 || top[0].Category != "h" || top[1].Category != "s1" || top[2].Category != "s2" {
		t.Fatalf("backfill = %+v", top)
	}
}

func TestTopActionsNonPositive(t *testing.T) {
	p, tr := mixedInputs()
	actions := GenerateActions(p, tr)
	for _, n := range []int{0, -1} {
		if top := TopActions(actions, n); len(top) != 0 {
			t.Fatalf("TopActions(%d) = %+v", n, top)
		}
	}
	if top := TopActions(nil, -1); top != nil {
		t.Fatalf("TopActions(nil, -1) = %+v", top)
	}
}

func TestMostlyMissingColumnIsCritical(t *testing.T) {
	lines := []string{"id,comment"}
	for i := 0; i < 1000; i++ {
		c := ""
		if i%20 == 0 {
			c = fmt.Sprintf("note %d", i)
		}
		lines = append(lines, fmt.Sprintf("%d,%s", i, c))
	}
	ds, err := dataset.Parse([]byte(strings.Join(lines, "\n")), dataset.LoadOptions{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	types := analysis.InferTypes(ds)
	p := analysis.Profile(ds, types)
	actions := GenerateActions(p, analysis.AnalyzeTrends(ds, types, analysis.DefaultLimits()))
	found := false
	for _, a := range actions {
		if a.Category == "Data Quality Crisis" && strings.Contains(a.Action, "'Comment'") {
			found = a.Priority == Critical
		}
	}
	if !found {
		t.Fatalf("missing critical action for comment: %+v", actions)
	}
}

func TestConstantCategoryTriggersConcentrationRisk(t *testing.T) {
	lines := []string{"status,value"}
	for i := 0; i < 100; i++ {
		lines = append(lines, fmt.Sprintf("active,%d", i))
	}
	ds, err := dataset.Parse([]byte(strings.Join(lines, "\n")), dataset.LoadOptions{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	types := analysis.InferTypes(ds)
	actions := GenerateActions(analysis.Profile(ds, types), analysis.AnalyzeTrends(ds, types, analysis.DefaultLimits()))
	var risk, balanced bool
	for _, a := range actions {
		risk = risk || a.Category == "Concentration Risk"
		balanced = balanced || a.Category == "Balanced Portfolio"
	}
	if !risk || balanced {
		t.Fatalf("risk=%v balanced=%v", risk, balanced)
	}
}

func TestGovernanceScore(t *testing.T) {
	p := &analysis.DatasetProfile{RowCount: 10, ColumnCount: 2, DuplicateRows: 1}
	if got := GovernanceScore(p); math.Abs(got-95) > 1e-9 {
		t.Fatalf("score = %v, want 95", got)
	}
	p = &analysis.DatasetProfile{RowCount: 10, ColumnCount: 2, TotalMissing: 10, Order: []string{}}
	actions := governanceActions(p, nil)
	if len(actions) != 1 || actions[0].Category != "Data Governance Crisis" {
		t.Fatalf("governance actions = %+v", actions)
	}
}

func TestSummarize(t *testing.T) {
	p, tr := mixedInputs()
	p.TotalMissing = 2
	s := Summarize(p, tr)
	if s.DatasetSize != "10 records covering 2 different measurements" {
		t.Fatalf("size = %q", s.DatasetSize)
	}
	if s.Quality.Score != 94 || s.Quality.Grade != "Very Good" {
		t.Fatalf("quality = %+v", s.Quality)
	}
	if len(s.KeyMetrics) != 2 || s.KeyMetrics[0].Trend != "Increasing" {
		t.Fatalf("key metrics = %+v", s.KeyMetrics)
	}
	if len(s.Alerts) != 2 {
		t.Fatalf("alerts = %v", s.Alerts)
	}

	big := &analysis.DatasetProfile{RowCount: 12345, ColumnCount: 3}
	s = Summarize(big, nil)
	if s.DatasetSize != "12,345 records covering 3 different measurements" {
		t.Fatalf("size = %q", s.DatasetSize)
	}
	if s.Alerts[0] != "No urgent issues detected - data looks healthy" || s.Opportunities[0] != "Continue monitoring current performance trends" {
		t.Fatalf("defaults = %v / %v", s.Alerts, s.Opportunities)
	}
}

func TestPriorityJSON(t *testing.T) {
	b, err := json.Marshal(Action{Priority: High})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"priority":"high"`) {
		t.Fatalf("json = %s", b)
	}
	var a Action
	if err := json.Unmarshal(b, &a); err != nil || a.Priority != High {
		t.Fatalf("unmarshal = %+v, %v", a, err)
	}
}
