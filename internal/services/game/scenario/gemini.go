package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/louisbranch/killchain/internal/services/game/domain/story"
)

// DefaultModel is the generative model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Gemini generates content with a Google generative model. Responses
// are requested as JSON; fenced output is tolerated.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds a provider against the Gemini API.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) GenerateScenario(ctx context.Context, req Request) (Data, error) {
	var sb strings.Builder
	sb.WriteString("あなたはサイバー攻撃疑似体験ゲームのシナリオライターです。以下の設定で、プレイヤー(攻撃者役)向けのブリーフィングを日本語で書いてください。\n")
	fmt.Fprintf(&sb, "標的組織: %s(%s)\n", req.Context.TargetOrg, req.Context.Industry)
	fmt.Fprintf(&sb, "組織の説明: %s\n", req.Context.TargetDescription)
	fmt.Fprintf(&sb, "最終目的: %s\n", req.Context.Objective)
	fmt.Fprintf(&sb, "今回の手口: %s(%s)\n", req.Component.Name, req.Component.Description)
	if len(req.Accumulated) > 0 {
		sb.WriteString("これまでの成果:\n")
		for k, v := range req.Accumulated {
			fmt.Fprintf(&sb, "- %s: %s\n", k, v)
		}
	}
	sb.WriteString(`JSONのみで回答してください: {"title": "...", "briefing": "...", "situation": "...", "hints": ["..."]}`)

	text, err := g.generate(ctx, sb.String())
	if err != nil {
		return Data{}, err
	}
	var out Data
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &out); err != nil {
		return Data{}, fmt.Errorf("parse scenario response: %w", err)
	}
	if out.Briefing == "" {
		return Data{}, fmt.Errorf("scenario response missing briefing")
	}
	return out, nil
}

func (g *Gemini) GenerateStoryContext(ctx context.Context, hint string) (story.Context, error) {
	prompt := "サイバー攻撃疑似体験ゲームの標的組織を日本語で創作してください。実在の組織名は使わないこと。"
	if hint != "" {
		prompt += "業種の希望: " + hint + "。"
	}
	prompt += `JSONのみで回答してください: {"industry": "...", "target_org": "...", "target_description": "...", "objective": "..."}`

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return story.Context{}, err
	}
	var raw struct {
		Industry          string `json:"industry"`
		TargetOrg         string `json:"target_org"`
		TargetDescription string `json:"target_description"`
		Objective         string `json:"objective"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &raw); err != nil {
		return story.Context{}, fmt.Errorf("parse context response: %w", err)
	}
	if raw.TargetOrg == "" || raw.Objective == "" {
		return story.Context{}, fmt.Errorf("context response incomplete")
	}
	return story.Context{
		Industry:          raw.Industry,
		TargetOrg:         raw.TargetOrg,
		TargetDescription: raw.TargetDescription,
		Objective:         raw.Objective,
	}, nil
}

func (g *Gemini) GenerateNarrative(ctx context.Context, req NarrativeRequest) (string, error) {
	prompt := fmt.Sprintf(
		"サイバー攻撃疑似体験ゲームの終了画面に表示する物語の結末を、日本語で3文以内で書いてください。標的: %s。最終スコア: %d点(%sランク)。検知レベル: %d。本文のみで回答してください。",
		req.Context.TargetOrg, req.TotalScore, req.Rank, req.Detection,
	)
	text, err := g.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(stripCodeFence(text))
	if text == "" {
		return "", fmt.Errorf("narrative response empty")
	}
	return text, nil
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty model response")
	}
	return text, nil
}

// stripCodeFence unwraps a ```json fenced block if the model added one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
