// Package story defines mission content: phases, components, and story
// definitions that seed a simulation run.
package story

import (
	apperrors "github.com/louisbranch/killchain/internal/platform/errors"
)

// Phase identifies a stage of the simulated attack chain.
type Phase string

const (
	// PhaseRecon is the reconnaissance stage.
	PhaseRecon Phase = "recon"
	// PhaseAccess is the initial access stage.
	PhaseAccess Phase = "access"
	// PhaseLateral is the lateral movement stage.
	PhaseLateral Phase = "lateral"
	// PhaseObjective is the final objective stage.
	PhaseObjective Phase = "objective"
)

// Phases lists all phases in chain order.
var Phases = []Phase{PhaseRecon, PhaseAccess, PhaseLateral, PhaseObjective}

// Valid reports whether the phase is a known chain stage.
func (p Phase) Valid() bool {
	for _, known := range Phases {
		if p == known {
			return true
		}
	}
	return false
}

// Order returns the position of the phase in the chain, or -1 when unknown.
func (p Phase) Order() int {
	for i, known := range Phases {
		if p == known {
			return i
		}
	}
	return -1
}

// Difficulty grades mission and component difficulty.
type Difficulty string

const (
	// DifficultyEasy marks introductory content.
	DifficultyEasy Difficulty = "easy"
	// DifficultyNormal marks standard content.
	DifficultyNormal Difficulty = "normal"
	// DifficultyHard marks advanced content.
	DifficultyHard Difficulty = "hard"
)

// Context holds the immutable narrative parameters of a run.
type Context struct {
	Industry          string
	TargetOrg         string
	TargetDescription string
	Objective         string
}

// PhaseDefinition pairs a phase with the components allowed to fill it.
type PhaseDefinition struct {
	Phase         Phase
	ComponentPool []string
}

// Definition describes a playable story.
type Definition struct {
	ID          string
	Title       string
	Description string
	Difficulty  Difficulty
	Context     Context
	Phases      []PhaseDefinition
}

// Component describes one selectable mini-game technique.
type Component struct {
	ID               string
	Name             string
	Phase            Phase
	Description      string
	Difficulty       Difficulty
	EstimatedMinutes int
	LearningPoints   []string
}

// Slot is an ordered pairing of a phase and the component chosen for it.
// A session holds a fixed sequence of slots; this is the run's plan.
type Slot struct {
	Phase       Phase
	ComponentID string
}

// ErrStoryNotFound indicates an unknown story id.
var ErrStoryNotFound = apperrors.New(apperrors.CodeStoryNotFound, "story not found")

// ErrComponentNotFound indicates an unknown component id.
var ErrComponentNotFound = apperrors.New(apperrors.CodeComponentNotFound, "component not found")

// ErrEmptyPlan indicates a story or chain with no playable phases.
var ErrEmptyPlan = apperrors.New(apperrors.CodeStoryEmptyPlan, "story has no phases")
