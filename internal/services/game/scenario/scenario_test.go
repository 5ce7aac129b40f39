package scenario

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/louisbranch/killchain/internal/services/game/domain/rank"
	"github.com/louisbranch/killchain/internal/services/game/domain/story"
)

func TestStaticCoversAllComponents(t *testing.T) {
	s := NewStatic()
	catalog := story.DefaultCatalog()
	ctx := context.Background()

	for _, comp := range catalog.Components() {
		data, err := s.GenerateScenario(ctx, Request{Component: comp, Context: presetContexts[0]})
		if err != nil {
			t.Errorf("GenerateScenario(%q) error = %v", comp.ID, err)
			continue
		}
		if data.Title == "" || data.Briefing == "" {
			t.Errorf("GenerateScenario(%q) = %+v, want non-empty title and briefing", comp.ID, data)
		}
	}
}

func TestStaticGenericBriefing(t *testing.T) {
	s := NewStatic()
	comp := story.Component{ID: "new-trick", Name: "新手口", Description: "説明"}
	data, err := s.GenerateScenario(context.Background(), Request{Component: comp, Context: presetContexts[1]})
	if err != nil {
		t.Fatalf("GenerateScenario() error = %v", err)
	}
	if data.Title != "新手口" {
		t.Errorf("Title = %q, want component name", data.Title)
	}
	if !strings.Contains(data.Situation, "東洋精密工業") {
		t.Errorf("Situation %q does not mention the target org", data.Situation)
	}
}

func TestStaticStoryContext(t *testing.T) {
	s := NewStatic()
	ctx := context.Background()

	got, err := s.GenerateStoryContext(ctx, "金融")
	if err != nil {
		t.Fatalf("GenerateStoryContext() error = %v", err)
	}
	if got.TargetOrg != "みらい銀行" {
		t.Errorf("industry hint pick = %q, want みらい銀行", got.TargetOrg)
	}

	a, err := s.GenerateStoryContext(ctx, "something else")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.GenerateStoryContext(ctx, "something else")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same hint produced different contexts: %v vs %v", a, b)
	}
	if a.TargetOrg == "" || a.Objective == "" {
		t.Errorf("context incomplete: %+v", a)
	}
}

func TestStaticNarrativePerRank(t *testing.T) {
	s := NewStatic()
	for _, r := range []rank.Rank{rank.S, rank.A, rank.B, rank.C, rank.D} {
		text, err := s.GenerateNarrative(context.Background(), NarrativeRequest{Context: presetContexts[0], Rank: r})
		if err != nil {
			t.Fatalf("GenerateNarrative(%s) error = %v", r, err)
		}
		if !strings.Contains(text, "みらい銀行") {
			t.Errorf("GenerateNarrative(%s) = %q, want target org mentioned", r, text)
		}
	}
}

type failingProvider struct{}

func (failingProvider) GenerateScenario(context.Context, Request) (Data, error) {
	return Data{}, errors.New("model unavailable")
}

func (failingProvider) GenerateStoryContext(context.Context, string) (story.Context, error) {
	return story.Context{}, errors.New("model unavailable")
}

func (failingProvider) GenerateNarrative(context.Context, NarrativeRequest) (string, error) {
	return "", errors.New("model unavailable")
}

func TestResilientFallsBack(t *testing.T) {
	r := NewResilient(failingProvider{}, NewStatic())
	ctx := context.Background()

	data, err := r.GenerateScenario(ctx, Request{
		Component: story.Component{ID: "sns-recon", Name: "SNS偵察"},
		Context:   presetContexts[0],
	})
	if err != nil {
		t.Fatalf("GenerateScenario() error = %v", err)
	}
	if data.Briefing == "" {
		t.Error("fallback briefing empty")
	}

	if _, err := r.GenerateStoryContext(ctx, ""); err != nil {
		t.Errorf("GenerateStoryContext() error = %v", err)
	}
	if _, err := r.GenerateNarrative(ctx, NarrativeRequest{Context: presetContexts[0], Rank: rank.A}); err != nil {
		t.Errorf("GenerateNarrative() error = %v", err)
	}
}

func TestResilientNilPrimary(t *testing.T) {
	r := NewResilient(nil, NewStatic())
	if _, err := r.GenerateStoryContext(context.Background(), ""); err != nil {
		t.Fatalf("GenerateStoryContext() error = %v", err)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare json", in: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "anonymous fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "surrounding whitespace", in: "  ```json\n{\"a\":1}\n```  ", want: `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.in); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
