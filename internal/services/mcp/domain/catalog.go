package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/killchain/internal/services/game/app"
)

// StoryListURI addresses the readable story catalog.
const StoryListURI = "catalog://stories"

// ComponentListURI addresses the readable component catalog.
const ComponentListURI = "catalog://components"

// StoryListEntry is one readable story definition.
type StoryListEntry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty"`
	TargetOrg   string   `json:"target_org"`
	Objective   string   `json:"objective"`
	Phases      []string `json:"phases"`
}

// StoryListPayload is the MCP resource payload for the story catalog.
type StoryListPayload struct {
	Stories []StoryListEntry `json:"stories"`
}

// StoryListResource defines the MCP resource for the story catalog.
func StoryListResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "story_list",
		Title:       "Stories",
		Description: "Readable listing of the playable attack stories.",
		MIMEType:    "application/json",
		URI:         StoryListURI,
	}
}

// StoryListResourceHandler returns the readable story catalog.
func StoryListResourceHandler(svc *app.Service) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		payload := StoryListPayload{}
		for _, def := range svc.ListStories() {
			entry := StoryListEntry{
				ID:          def.ID,
				Title:       def.Title,
				Description: def.Description,
				Difficulty:  string(def.Difficulty),
				TargetOrg:   def.Context.TargetOrg,
				Objective:   def.Context.Objective,
			}
			for _, phase := range def.Phases {
				entry.Phases = append(entry.Phases, string(phase.Phase))
			}
			payload.Stories = append(payload.Stories, entry)
		}
		return resourceResult(StoryListURI, payload)
	}
}

// ComponentListEntry is one readable component definition.
type ComponentListEntry struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Phase            string   `json:"phase"`
	Description      string   `json:"description"`
	Difficulty       string   `json:"difficulty"`
	EstimatedMinutes int      `json:"estimated_minutes"`
	LearningPoints   []string `json:"learning_points"`
}

// ComponentListPayload is the MCP resource payload for the component
// catalog.
type ComponentListPayload struct {
	Components []ComponentListEntry `json:"components"`
}

// ComponentListResource defines the MCP resource for the component catalog.
func ComponentListResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "component_list",
		Title:       "Components",
		Description: "Readable listing of the mini-game techniques available to build a kill chain.",
		MIMEType:    "application/json",
		URI:         ComponentListURI,
	}
}

// ComponentListResourceHandler returns the readable component catalog.
func ComponentListResourceHandler(svc *app.Service) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		payload := ComponentListPayload{}
		for _, comp := range svc.ListComponents() {
			payload.Components = append(payload.Components, ComponentListEntry{
				ID:               comp.ID,
				Name:             comp.Name,
				Phase:            string(comp.Phase),
				Description:      comp.Description,
				Difficulty:       string(comp.Difficulty),
				EstimatedMinutes: comp.EstimatedMinutes,
				LearningPoints:   comp.LearningPoints,
			})
		}
		return resourceResult(ComponentListURI, payload)
	}
}

func resourceResult(uri string, payload any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource payload: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}
