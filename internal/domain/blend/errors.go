package blend

import "errors"

// Domain errors for blend operations

var (
	// Recipe validation errors
	ErrInvalidRecipe       = errors.New("invalid recipe")
	ErrRecipeNameRequired  = errors.New("recipe name is required")
	ErrFatRatioOutOfRange  = errors.New("fat ratio must be between 0 and 1")
	ErrMeatRatioOutOfRange = errors.New("meat ratio must be between 0 and 1")
	ErrNegativeUnitWeight  = errors.New("unit weight cannot be negative")
	ErrMeatNameRequired    = errors.New("meat name is required")
	ErrDuplicateMeat       = errors.New("meat already exists in recipe")
	ErrNegativeUnits       = errors.New("target units cannot be negative")
	ErrNegativePrice       = errors.New("price cannot be negative")

	// Editor errors
	ErrMeatIndexOutOfRange = errors.New("meat index out of range")
	ErrUnknownSize         = errors.New("unknown burger size")

	// State errors
	ErrStateNotFound = errors.New("state entry not found")

	// AI collaborator errors
	ErrCredentialMissing = errors.New("ai credential missing")
	ErrCredentialInvalid = errors.New("ai credential invalid")
	ErrExtractionFailed  = errors.New("recipe extraction failed")
	ErrSearchFailed      = errors.New("blend search failed")
	ErrQuotaExceeded     = errors.New("ai request quota exceeded")
)
