package insight

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Priority orders actions: lower values come first.
type Priority int

const (
	Critical Priority = iota
	High
	Strategic
)

func (p Priority) String() string {
	switch p {
	case Critical:
		return "critical"
	case High:
		return "high"
	case Strategic:
		return "strategic"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// Label is the display form used in reports.
func (p Priority) Label() string {
	switch p {
	case Critical:
		return "Critical Priority"
	case High:
		return "High Priority"
	default:
		return "Strategic Opportunity"
	}
}

// MarshalText encodes the priority by name.
func (p Priority) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText decodes a priority name.
func (p *Priority) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "critical":
		*p = Critical
	case "high":
		*p = High
	case "strategic":
		*p = Strategic
	default:
		return fmt.Errorf("unknown priority %q", string(b))
	}
	return nil
}

// Action is one business recommendation.
type Action struct {
	Category        string   `json:"category"`
	Action          string   `json:"action"`
	Reason          string   `json:"reason"`
	Impact          string   `json:"impact"`
	QuickWin        string   `json:"quick_win"`
	LongTerm        string   `json:"long_term"`
	ExpectedBenefit string   `json:"expected_benefit"`
	Priority        Priority `json:"priority"`
	Owner           string   `json:"owner"`
	Timeline        string   `json:"timeline"`
}

// SortByPriority orders actions by tier, keeping generation order within a tier.
func SortByPriority(actions []Action) {
	sort.SliceStable(actions, func(i, j int) bool { return actions[i].Priority < actions[j].Priority })
}

// TopActions returns up to n actions, preferring critical and high ones and
// backfilling with strategic ones. actions must already be sorted.
func TopActions(actions []Action, n int) []Action {
	if n <= 0 {
		return nil
	}
	out := make([]Action, 0, n)
	for _, a := range actions {
		if len(out) == n {
			return out
		}
		if a.Priority == Critical || a.Priority == High {
			out = append(out, a)
		}
	}
	for _, a := range actions {
		if len(out) == n {
			break
		}
		if a.Priority == Strategic {
			out = append(out, a)
		}
	}
	return out
}

// displayName turns unit_price into Unit Price.
func displayName(col string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(col, "_", " "))
}
