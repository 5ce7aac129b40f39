// Package stealth tracks the attacker's remaining stealth and the
// defender's awareness of the intrusion.
package stealth

import (
	"math/rand"
	"strconv"

	apperrors "github.com/louisbranch/killchain/internal/platform/errors"
)

// Max is the stealth a fresh session starts with.
const Max = 100

// Costs for common risky operations.
const (
	CostScan           = 3
	CostAccess         = 5
	CostExploit        = 10
	CostPhishingFail   = 10
	CostPasswordMiss   = 5
	CostEncryptFast    = 15
	CostEncryptCareful = 5
)

// ErrNegativeSpend indicates a caller asked to spend a negative amount.
var ErrNegativeSpend = apperrors.New(apperrors.CodeStealthNegativeSpend, "stealth spend must not be negative")

// Spend deducts amount from current and clamps at zero. A zero amount is
// a no-op; a negative amount is rejected rather than silently refunding.
func Spend(current, amount int) (int, error) {
	if amount < 0 {
		return current, apperrors.WithMetadata(apperrors.CodeStealthNegativeSpend, "stealth spend must not be negative", map[string]string{"Amount": strconv.Itoa(amount)})
	}
	remaining := current - amount
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Reaction is the defender's posture for a given detection level.
type Reaction string

const (
	ReactionQuiet    Reaction = "quiet"
	ReactionAlert    Reaction = "alert"
	ReactionLockdown Reaction = "lockdown"
)

// React maps a detection level to the defender's posture and the
// detection increase the next risky action will incur.
func React(detection int) (Reaction, int) {
	switch {
	case detection < 30:
		return ReactionQuiet, 5
	case detection < 60:
		return ReactionAlert, 10
	default:
		return ReactionLockdown, 20
	}
}

// DetectionRoll reports whether a risky action with the given percent
// risk is noticed by the defender. The rng is injected so runs replay.
func DetectionRoll(rng *rand.Rand, riskPercent int) bool {
	if riskPercent <= 0 {
		return false
	}
	if riskPercent >= 100 {
		return true
	}
	return rng.Intn(100) < riskPercent
}

// Bonus converts remaining stealth into end-of-phase bonus points.
func Bonus(current int) int {
	if current < 0 {
		return 0
	}
	return current * 25 / 100
}
