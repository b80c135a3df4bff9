package auth

import "context"

// Identity is the caller's resolved authentication state for one request.
// The zero value is the anonymous caller.
//
// Identities are produced only by the token middleware; services treat them
// as already validated and never look at tokens themselves.
type Identity struct {
	Email string
}

// Anonymous is the identity of a caller that sent no credentials.
var Anonymous = Identity{}

// Authenticated reports whether the identity carries a verified email.
func (id Identity) Authenticated() bool {
	return id.Email != ""
}

// Is reports whether the identity belongs to the account with this email.
// Emails compare case-sensitively, as stored.
func (id Identity) Is(email string) bool {
	return id.Authenticated() && id.Email == email
}

// Visibility is the field projection a read resolves to.
type Visibility int

const (
	// Public callers get the restricted field set.
	Public Visibility = iota
	// Authenticated callers additionally see volcano population bands.
	Authenticated
	// Owner callers additionally see their own private profile fields.
	Owner
)

func (v Visibility) String() string {
	switch v {
	case Authenticated:
		return "authenticated"
	case Owner:
		return "owner"
	default:
		return "public"
	}
}

// VisibilityFor resolves the projection for a resource with no owner.
func VisibilityFor(id Identity) Visibility {
	if id.Authenticated() {
		return Authenticated
	}
	return Public
}

// VisibilityForOwned resolves the projection for a resource owned by ownerEmail.
func VisibilityForOwned(id Identity, ownerEmail string) Visibility {
	if id.Is(ownerEmail) {
		return Owner
	}
	return VisibilityFor(id)
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity stores the identity in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller's identity, Anonymous if none was set.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}
