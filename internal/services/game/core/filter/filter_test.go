package filter

import (
	"testing"
	"time"

	apperrors "github.com/louisbranch/killchain/internal/platform/errors"
	"github.com/louisbranch/killchain/internal/services/game/domain/action"
)

func TestParseActionFilter(t *testing.T) {
	tests := []struct {
		name       string
		filter     string
		wantClause string
		wantParams []any
		wantErr    bool
	}{
		{
			name: "empty filter",
		},
		{
			name:       "type equality",
			filter:     `type = "scan"`,
			wantClause: "action_type = ?",
			wantParams: []any{"scan"},
		},
		{
			name:       "success flag",
			filter:     "success = false",
			wantClause: "success = ?",
			wantParams: []any{int64(0)},
		},
		{
			name:       "success true",
			filter:     "success = true",
			wantClause: "success = ?",
			wantParams: []any{int64(1)},
		},
		{
			name:       "and of comparisons",
			filter:     `type = "scan" AND detection >= 30`,
			wantClause: "(action_type = ? AND detection >= ?)",
			wantParams: []any{"scan", int64(30)},
		},
		{
			name:       "timestamp comparison",
			filter:     `at >= timestamp("2026-01-02T00:00:00Z")`,
			wantClause: "at >= ?",
			wantParams: []any{time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC).UnixMilli()},
		},
		{
			name:    "unknown field",
			filter:  `color = "red"`,
			wantErr: true,
		},
		{
			name:    "garbage",
			filter:  "((",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := ParseActionFilter(tt.filter)
			if tt.wantErr {
				if apperrors.CodeOf(err) != apperrors.CodeFilterInvalid {
					t.Fatalf("ParseActionFilter() error = %v, want filter invalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseActionFilter() error = %v", err)
			}
			if cond.Clause != tt.wantClause {
				t.Errorf("Clause = %q, want %q", cond.Clause, tt.wantClause)
			}
			if len(cond.Params) != len(tt.wantParams) {
				t.Fatalf("Params = %v, want %v", cond.Params, tt.wantParams)
			}
			for i := range cond.Params {
				if cond.Params[i] != tt.wantParams[i] {
					t.Errorf("Params[%d] = %v, want %v", i, cond.Params[i], tt.wantParams[i])
				}
			}
		})
	}
}

func TestActionPredicate(t *testing.T) {
	entries := []action.Entry{
		{Type: action.TypeScan, Target: "file-server", Success: true, StealthCost: 3, Detection: 0, At: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)},
		{Type: action.TypePasswordAttempt, Success: false, StealthCost: 5, Detection: 5, At: time.Date(2026, 1, 1, 10, 5, 0, 0, time.UTC)},
		{Type: action.TypeEncrypt, Success: true, StealthCost: 15, Detection: 25, At: time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC)},
	}

	tests := []struct {
		name   string
		filter string
		want   []int
	}{
		{name: "match all", filter: "", want: []int{0, 1, 2}},
		{name: "by type", filter: `type = "scan"`, want: []int{0}},
		{name: "failures only", filter: "success = false", want: []int{1}},
		{name: "loud actions", filter: "stealth_cost >= 5", want: []int{1, 2}},
		{name: "and", filter: `success = true AND detection > 0`, want: []int{2}},
		{name: "or", filter: `type = "scan" OR type = "encrypt"`, want: []int{0, 2}},
		{name: "after timestamp", filter: `at >= timestamp("2026-01-01T10:30:00Z")`, want: []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := ActionPredicate(tt.filter)
			if err != nil {
				t.Fatalf("ActionPredicate() error = %v", err)
			}
			var got []int
			for i, e := range entries {
				if match(e) {
					got = append(got, i)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("matched %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("matched %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestActionPredicateInvalid(t *testing.T) {
	for _, f := range []string{`color = "red"`, "((", `type = 5`} {
		if _, err := ActionPredicate(f); apperrors.CodeOf(err) != apperrors.CodeFilterInvalid {
			t.Errorf("ActionPredicate(%q) error = %v, want filter invalid", f, err)
		}
	}
}
