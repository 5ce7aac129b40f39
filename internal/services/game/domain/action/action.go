// Package action applies in-phase player moves to a session: gathering
// clues, probing the network, guessing credentials, and running the
// final encryption. Every move costs stealth, risks detection, and
// lands in the action log.
package action

import (
	"math/rand"
	"time"

	apperrors "github.com/louisbranch/killchain/internal/platform/errors"
	"github.com/louisbranch/killchain/internal/services/game/domain/session"
	"github.com/louisbranch/killchain/internal/services/game/domain/stealth"
)

// Type identifies a player move.
type Type string

const (
	TypeCollectClue     Type = "collect_clue"
	TypeScan            Type = "scan"
	TypeAccess          Type = "access"
	TypeExploit         Type = "exploit"
	TypePhishingSend    Type = "phishing_send"
	TypePasswordAttempt Type = "password_attempt"
	TypeDisableBackup   Type = "disable_backup"
	TypeEncrypt         Type = "encrypt"
)

// MaxPasswordAttempts is the lockout threshold for credential guessing.
const MaxPasswordAttempts = 5

// Detection risk per move, in percent.
const (
	riskScan    = 15
	riskAccess  = 30
	riskExploit = 50
	riskBackup  = 40
	riskEncrypt = 60
)

var (
	// ErrUnknownType indicates a move the engine does not know.
	ErrUnknownType = apperrors.New(apperrors.CodeActionUnknownType, "unknown action type")
	// ErrUnknownTarget indicates a move against a target the session
	// has not discovered.
	ErrUnknownTarget = apperrors.New(apperrors.CodeActionUnknownTarget, "unknown action target")
	// ErrLockedOut indicates the account locked after too many guesses.
	ErrLockedOut = apperrors.New(apperrors.CodeActionLockedOut, "account locked out")
)

// Request is one player move.
type Request struct {
	Type   Type   `json:"type"`
	Target string `json:"target,omitempty"`
	// Correct reports whether a guess or lure landed. The mini-game
	// front end evaluates the answer; the engine applies consequences.
	Correct bool `json:"correct,omitempty"`
	// Admin marks an exploit that yields administrator rights.
	Admin bool `json:"admin,omitempty"`
	// Careful selects the slow, low-noise encryption mode.
	Careful bool `json:"careful,omitempty"`
}

// Effect is what a move did to the session.
type Effect struct {
	Success      bool             `json:"success"`
	StealthCost  int              `json:"stealth_cost"`
	Stealth      int              `json:"stealth"`
	Detected     bool             `json:"detected"`
	Detection    int              `json:"detection"`
	Reaction     stealth.Reaction `json:"reaction"`
	LockedOut    bool             `json:"locked_out,omitempty"`
	AttemptsLeft int              `json:"attempts_left,omitempty"`
}

// Entry is the action log record for one move.
type Entry struct {
	SessionID   string    `json:"session_id"`
	Seq         int64     `json:"seq"`
	Type        Type      `json:"type"`
	Target      string    `json:"target,omitempty"`
	Success     bool      `json:"success"`
	StealthCost int       `json:"stealth_cost"`
	Detection   int       `json:"detection"`
	At          time.Time `json:"at"`
}

// Apply executes a move against the session, mutating its state. The
// returned entry is ready for the action log; Seq is assigned by the
// store on append.
func Apply(s *session.Session, rng *rand.Rand, req Request, now time.Time) (Effect, Entry, error) {
	if s.IsComplete() {
		return Effect{}, Entry{}, session.ErrCompleted
	}

	var (
		cost    int
		risk    int
		success bool
		err     error
	)

	switch req.Type {
	case TypeCollectClue:
		if req.Target == "" {
			return Effect{}, Entry{}, apperrors.New(apperrors.CodeActionUnknownTarget, "clue target required")
		}
		if !contains(s.CollectedClues, req.Target) {
			s.CollectedClues = append(s.CollectedClues, req.Target)
		}
		success = true

	case TypeScan:
		if req.Target == "" {
			return Effect{}, Entry{}, apperrors.New(apperrors.CodeActionUnknownTarget, "scan target required")
		}
		cost, risk = stealth.CostScan, riskScan
		if !contains(s.DiscoveredNodes, req.Target) {
			s.DiscoveredNodes = append(s.DiscoveredNodes, req.Target)
		}
		success = true

	case TypeAccess:
		if !contains(s.DiscoveredNodes, req.Target) {
			return Effect{}, Entry{}, apperrors.WithMetadata(apperrors.CodeActionUnknownTarget, "node not discovered: "+req.Target, map[string]string{"Target": req.Target})
		}
		cost, risk = stealth.CostAccess, riskAccess
		if !contains(s.CompromisedNodes, req.Target) {
			s.CompromisedNodes = append(s.CompromisedNodes, req.Target)
		}
		success = true

	case TypeExploit:
		if !contains(s.CompromisedNodes, req.Target) {
			return Effect{}, Entry{}, apperrors.WithMetadata(apperrors.CodeActionUnknownTarget, "node not compromised: "+req.Target, map[string]string{"Target": req.Target})
		}
		cost, risk = stealth.CostExploit, riskExploit
		if req.Admin {
			s.HasAdmin = true
		}
		success = true

	case TypePhishingSend:
		success = req.Correct
		if !success {
			cost = stealth.CostPhishingFail
			risk = riskAccess
		}

	case TypePasswordAttempt:
		if s.LockedOut {
			return Effect{}, Entry{}, ErrLockedOut
		}
		s.PasswordAttempts++
		success = req.Correct
		if !success {
			cost = stealth.CostPasswordMiss
			risk = riskAccess
			if s.PasswordAttempts >= MaxPasswordAttempts {
				s.LockedOut = true
			}
		}

	case TypeDisableBackup:
		if !s.HasAdmin {
			success = false
		} else {
			s.BackupDisabled = true
			success = true
		}
		cost, risk = stealth.CostAccess, riskBackup

	case TypeEncrypt:
		if req.Careful {
			cost = stealth.CostEncryptCareful
			risk = riskAccess
		} else {
			cost = stealth.CostEncryptFast
			risk = riskEncrypt
		}
		success = true

	default:
		return Effect{}, Entry{}, apperrors.WithMetadata(apperrors.CodeActionUnknownType, "unknown action type: "+string(req.Type), map[string]string{"Action": string(req.Type)})
	}

	s.Stealth, err = stealth.Spend(s.Stealth, cost)
	if err != nil {
		return Effect{}, Entry{}, err
	}

	detected := stealth.DetectionRoll(rng, risk)
	if detected {
		_, inc := stealth.React(s.Detection)
		s.Detection += inc
		if s.Detection > 100 {
			s.Detection = 100
		}
	}
	reaction, _ := stealth.React(s.Detection)
	s.Touch(now)

	eff := Effect{
		Success:     success,
		StealthCost: cost,
		Stealth:     s.Stealth,
		Detected:    detected,
		Detection:   s.Detection,
		Reaction:    reaction,
		LockedOut:   s.LockedOut,
	}
	if req.Type == TypePasswordAttempt && !s.LockedOut {
		eff.AttemptsLeft = MaxPasswordAttempts - s.PasswordAttempts
	}

	entry := Entry{
		SessionID:   s.ID,
		Type:        req.Type,
		Target:      req.Target,
		Success:     success,
		StealthCost: cost,
		Detection:   s.Detection,
		At:          now,
	}
	return eff, entry, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
