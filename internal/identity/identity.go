// Package identity models who is asking for an assessment. The set of
// identities is closed: a request is either authenticated or anonymous,
// never a synthesized stand-in object.
package identity

// Identity is a sealed interface; Authenticated and Anonymous are the only
// implementations.
type Identity interface {
	isIdentity()
}

// Preferences are per-user assessment preferences that tune presentation,
// never the underlying science.
type Preferences struct {
	PreferMobileView bool     `json:"prefer_mobile_view"`
	AvoidIngredients []string `json:"avoid_ingredients,omitempty"`
}

// Authenticated is a signed-in user.
type Authenticated struct {
	ID          string
	Email       string
	Preferences Preferences
}

// Anonymous is an unauthenticated request.
type Anonymous struct{}

func (Authenticated) isIdentity() {}
func (Anonymous) isIdentity()     {}
