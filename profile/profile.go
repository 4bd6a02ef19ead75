// Package profile defines the UserProfile the orchestrator fans out to
// every registered analyzer and predictor.
package profile

import "github.com/motorlot/recoengine/recoerrors"

// Purpose is the recognized intent behind a recommendation request.
type Purpose string

// Recognized Purpose values.
const (
	PurposeGeneral  Purpose = "general"
	PurposeFamily   Purpose = "family"
	PurposeBusiness Purpose = "business"
	PurposeLeisure  Purpose = "leisure"
)

func (p Purpose) valid() bool {
	switch p {
	case PurposeGeneral, PurposeFamily, PurposeBusiness, PurposeLeisure, "":
		return true
	default:
		return false
	}
}

// Budget bounds the acceptable vehicle price range.
type Budget struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Preferences captures the recognized preference fields. Any field left at
// its zero value is treated as unset.
type Preferences struct {
	Brands       []string `json:"brands,omitempty"`
	MinYear      int      `json:"minYear,omitempty"`
	MaxDistance  float64  `json:"maxDistance,omitempty"`
	FuelType     string   `json:"fuelType,omitempty"`
	Transmission string   `json:"transmission,omitempty"`
}

// UserProfile is an opaque key/value bag with a set of recognized fields.
// Extra carries any additional fields a caller supplied that this module
// does not interpret, so analyzers written against a richer contract are
// not forced to lose data that passes through the orchestrator.
type UserProfile struct {
	Budget      Budget         `json:"budget"`
	Preferences Preferences    `json:"preferences"`
	Purpose     Purpose        `json:"purpose,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Validate reports a *recoerrors.ValidationError if the profile violates one
// of the recognized field constraints. Unrecognized Extra fields are never
// validated — they are opaque by design.
func (p UserProfile) Validate() error {
	if p.Budget.Min < 0 {
		return recoerrors.NewValidationError("budget.min must be >= 0")
	}
	if p.Budget.Max < 0 {
		return recoerrors.NewValidationError("budget.max must be >= 0")
	}
	if p.Budget.Max > 0 && p.Budget.Min > p.Budget.Max {
		return recoerrors.NewValidationError("budget.min must be <= budget.max")
	}
	if p.Preferences.MinYear < 0 {
		return recoerrors.NewValidationError("preferences.minYear must be >= 0")
	}
	if p.Preferences.MaxDistance < 0 {
		return recoerrors.NewValidationError("preferences.maxDistance must be >= 0")
	}
	if !p.Purpose.valid() {
		return recoerrors.NewValidationError("purpose must be one of general, family, business, leisure")
	}
	return nil
}
