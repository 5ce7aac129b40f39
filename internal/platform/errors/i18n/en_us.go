package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeInvalidRequest               = "INVALID_REQUEST"
	CodeStoryNotFound                = "STORY_NOT_FOUND"
	CodeStoryEmptyPlan               = "STORY_EMPTY_PLAN"
	CodeComponentNotFound            = "COMPONENT_NOT_FOUND"
	CodeComponentPhaseMismatch       = "COMPONENT_PHASE_MISMATCH"
	CodeSessionNotFound              = "SESSION_NOT_FOUND"
	CodeSessionCompleted             = "SESSION_COMPLETED"
	CodeSessionPhaseAlreadyCompleted = "SESSION_PHASE_ALREADY_COMPLETED"
	CodeSessionInvalidSlot           = "SESSION_INVALID_SLOT"
	CodeScoreBreakdownInvalid        = "SCORE_BREAKDOWN_INVALID"
	CodeScorerNotFound               = "SCORER_NOT_FOUND"
	CodeStealthNegativeSpend         = "STEALTH_NEGATIVE_SPEND"
	CodeActionUnknownType            = "ACTION_UNKNOWN_TYPE"
	CodeActionUnknownTarget          = "ACTION_UNKNOWN_TARGET"
	CodeActionLockedOut              = "ACTION_LOCKED_OUT"
	CodeReportNotReady               = "REPORT_NOT_READY"
	CodeNotFound                     = "NOT_FOUND"
	CodeFilterInvalid                = "FILTER_INVALID"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		CodeInvalidRequest: "The request payload is malformed",

		// Story and catalog errors
		CodeStoryNotFound:          "Unknown story: {{.StoryID}}",
		CodeStoryEmptyPlan:         "A mission needs at least one phase",
		CodeComponentNotFound:      "Unknown component: {{.ComponentID}}",
		CodeComponentPhaseMismatch: "Component {{.ComponentID}} does not belong to phase {{.Phase}}",

		// Session errors
		CodeSessionNotFound:              "Session not found. Start a new run to continue.",
		CodeSessionCompleted:             "This run is already complete",
		CodeSessionPhaseAlreadyCompleted: "Phase {{.Slot}} was already completed",
		CodeSessionInvalidSlot:           "Phase slot {{.Slot}} is out of range",

		// Scoring errors
		CodeScoreBreakdownInvalid: "Score breakdown is invalid",
		CodeScorerNotFound:        "No scorer registered for component {{.ComponentID}}",

		// Stealth errors
		CodeStealthNegativeSpend: "Stealth spend amount cannot be negative",

		// Action errors
		CodeActionUnknownType:   "Unknown action: {{.Action}}",
		CodeActionUnknownTarget: "Unknown target: {{.Target}}",
		CodeActionLockedOut:     "The account is locked out",

		// Report errors
		CodeReportNotReady: "The report is available once all phases are complete",

		// Storage errors
		CodeNotFound: "The requested resource was not found",

		// Filter errors
		CodeFilterInvalid: "Filter expression is invalid",
	},
}
