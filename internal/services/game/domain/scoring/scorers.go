package scoring

import (
	apperrors "github.com/louisbranch/killchain/internal/platform/errors"
	"github.com/louisbranch/killchain/internal/services/game/domain/stealth"
)

// Outcome carries the raw results of one mini-game. Exactly one kind
// field is set; Score rejects outcomes that do not match the component.
type Outcome struct {
	Recon     *ReconOutcome     `json:"recon,omitempty"`
	Phishing  *PhishingOutcome  `json:"phishing,omitempty"`
	Password  *PasswordOutcome  `json:"password,omitempty"`
	Intrusion *IntrusionOutcome `json:"intrusion,omitempty"`
	Ransom    *RansomOutcome    `json:"ransom,omitempty"`
	Generic   *GenericOutcome   `json:"generic,omitempty"`
}

// ReconOutcome is the result of an information gathering mini-game.
type ReconOutcome struct {
	CluesFound       int  `json:"clues_found"`
	CluesTotal       int  `json:"clues_total"`
	KeyClueFound     bool `json:"key_clue_found"`
	StealthRemaining int  `json:"stealth_remaining"`
}

// PhishingOutcome grades the crafted lure. Each field is 0-100 quality.
type PhishingOutcome struct {
	SenderQuality  int `json:"sender_quality"`
	SubjectQuality int `json:"subject_quality"`
	BodyQuality    int `json:"body_quality"`
	LinkQuality    int `json:"link_quality"`
}

// PasswordOutcome is the result of a credential attack.
type PasswordOutcome struct {
	Success  bool `json:"success"`
	Attempts int  `json:"attempts"`
	// ClueAccuracy is the share of collected clues actually used, 0-100.
	ClueAccuracy int  `json:"clue_accuracy"`
	Targeted     bool `json:"targeted"`
}

// IntrusionOutcome is the result of a network exploration mini-game.
type IntrusionOutcome struct {
	AccessGained     bool `json:"access_gained"`
	NodesDiscovered  int  `json:"nodes_discovered"`
	NodesTotal       int  `json:"nodes_total"`
	ObjectiveReached bool `json:"objective_reached"`
	StealthRemaining int  `json:"stealth_remaining"`
}

// RansomOutcome is the result of the final encryption play.
type RansomOutcome struct {
	BackupDisabled   bool `json:"backup_disabled"`
	FilesEncrypted   int  `json:"files_encrypted"`
	FilesTotal       int  `json:"files_total"`
	Careful          bool `json:"careful"`
	StealthRemaining int  `json:"stealth_remaining"`
}

// GenericOutcome grades components without a dedicated scorer.
type GenericOutcome struct {
	Succeeded        bool `json:"succeeded"`
	Efficiency       int  `json:"efficiency"`
	StealthRemaining int  `json:"stealth_remaining"`
}

// WithStealth returns a copy of the outcome with every stealth field
// replaced by the tracked level. The session meter is authoritative;
// callers cannot inflate the stealth bonus by reporting a higher value.
func (o Outcome) WithStealth(level int) Outcome {
	if o.Recon != nil {
		v := *o.Recon
		v.StealthRemaining = level
		o.Recon = &v
	}
	if o.Intrusion != nil {
		v := *o.Intrusion
		v.StealthRemaining = level
		o.Intrusion = &v
	}
	if o.Ransom != nil {
		v := *o.Ransom
		v.StealthRemaining = level
		o.Ransom = &v
	}
	if o.Generic != nil {
		v := *o.Generic
		v.StealthRemaining = level
		o.Generic = &v
	}
	return o
}

type kind int

const (
	kindRecon kind = iota
	kindPhishing
	kindPassword
	kindIntrusion
	kindRansom
	kindGeneric
)

var kindByComponent = map[string]kind{
	"sns-recon":            kindRecon,
	"dumpster-diving":      kindRecon,
	"leak-search":          kindRecon,
	"phishing-email":       kindPhishing,
	"password-cracking":    kindPassword,
	"shoulder-surfing":     kindPassword,
	"network-intrusion":    kindIntrusion,
	"privilege-escalation": kindIntrusion,
	"ransomware":           kindRansom,
	"data-exfiltration":    kindGeneric,
}

// Score grades the outcome of the given component and finalizes it.
func Score(componentID string, out Outcome) (Result, error) {
	k, ok := kindByComponent[componentID]
	if !ok {
		return Result{}, apperrors.WithMetadata(apperrors.CodeScorerNotFound, "no scorer for component: "+componentID, map[string]string{"ComponentID": componentID})
	}
	var breakdown []Entry
	switch k {
	case kindRecon:
		if out.Recon == nil {
			return Result{}, missingOutcome(componentID)
		}
		breakdown = scoreRecon(*out.Recon)
	case kindPhishing:
		if out.Phishing == nil {
			return Result{}, missingOutcome(componentID)
		}
		breakdown = scorePhishing(*out.Phishing)
	case kindPassword:
		if out.Password == nil {
			return Result{}, missingOutcome(componentID)
		}
		breakdown = scorePassword(*out.Password)
	case kindIntrusion:
		if out.Intrusion == nil {
			return Result{}, missingOutcome(componentID)
		}
		breakdown = scoreIntrusion(*out.Intrusion)
	case kindRansom:
		if out.Ransom == nil {
			return Result{}, missingOutcome(componentID)
		}
		breakdown = scoreRansom(*out.Ransom)
	default:
		if out.Generic == nil {
			return Result{}, missingOutcome(componentID)
		}
		breakdown = scoreGeneric(*out.Generic)
	}
	return Finalize(breakdown)
}

func missingOutcome(componentID string) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidRequest, "outcome missing for component: "+componentID, map[string]string{"ComponentID": componentID})
}

func scoreRecon(out ReconOutcome) []Entry {
	clues := 0
	if out.CluesTotal > 0 {
		clues = 50 * out.CluesFound / out.CluesTotal
	}
	key := 0
	if out.KeyClueFound {
		key = 25
	}
	return []Entry{
		{Category: "clues", Points: clues, MaxPoints: 50},
		{Category: "key_clue", Points: key, MaxPoints: 25},
		{Category: "stealth", Points: stealth.Bonus(out.StealthRemaining), MaxPoints: 25},
	}
}

func scorePhishing(out PhishingOutcome) []Entry {
	return []Entry{
		{Category: "sender", Points: out.SenderQuality * 25 / 100, MaxPoints: 25},
		{Category: "subject", Points: out.SubjectQuality * 25 / 100, MaxPoints: 25},
		{Category: "body", Points: out.BodyQuality * 30 / 100, MaxPoints: 30},
		{Category: "link", Points: out.LinkQuality * 20 / 100, MaxPoints: 20},
	}
}

func scorePassword(out PasswordOutcome) []Entry {
	method := 0
	attempts := 0
	accuracy := 0
	if out.Success {
		method = 20
		if out.Targeted {
			method = 30
		}
		attempts = 40 - 10*(out.Attempts-1)
		if attempts < 10 {
			attempts = 10
		}
		accuracy = out.ClueAccuracy * 30 / 100
	}
	return []Entry{
		{Category: "method", Points: method, MaxPoints: 30},
		{Category: "attempts", Points: attempts, MaxPoints: 40},
		{Category: "accuracy", Points: accuracy, MaxPoints: 30},
	}
}

func scoreIntrusion(out IntrusionOutcome) []Entry {
	access := 0
	if out.AccessGained {
		access = 20
	}
	exploration := 0
	if out.NodesTotal > 0 {
		exploration = 30 * out.NodesDiscovered / out.NodesTotal
	}
	objective := 0
	if out.ObjectiveReached {
		objective = 25
	}
	return []Entry{
		{Category: "access", Points: access, MaxPoints: 20},
		{Category: "exploration", Points: exploration, MaxPoints: 30},
		{Category: "objective", Points: objective, MaxPoints: 25},
		{Category: "stealth", Points: stealth.Bonus(out.StealthRemaining), MaxPoints: 25},
	}
}

func scoreRansom(out RansomOutcome) []Entry {
	prep := 0
	if out.BackupDisabled {
		prep = 25
	}
	coverage := 0
	if out.FilesTotal > 0 {
		coverage = 30 * out.FilesEncrypted / out.FilesTotal
	}
	method := 8
	if out.Careful {
		method = 20
	}
	return []Entry{
		{Category: "preparation", Points: prep, MaxPoints: 25},
		{Category: "coverage", Points: coverage, MaxPoints: 30},
		{Category: "method", Points: method, MaxPoints: 20},
		{Category: "stealth", Points: stealth.Bonus(out.StealthRemaining), MaxPoints: 25},
	}
}

func scoreGeneric(out GenericOutcome) []Entry {
	done := 0
	if out.Succeeded {
		done = 50
	}
	return []Entry{
		{Category: "completion", Points: done, MaxPoints: 50},
		{Category: "efficiency", Points: out.Efficiency * 25 / 100, MaxPoints: 25},
		{Category: "stealth", Points: stealth.Bonus(out.StealthRemaining), MaxPoints: 25},
	}
}
