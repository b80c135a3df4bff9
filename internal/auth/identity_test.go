package auth

import (
	"context"
	"testing"
)

func TestIdentity(t *testing.T) {
	if Anonymous.Authenticated() {
		t.Error("Anonymous.Authenticated() = true")
	}
	if Anonymous.Is("") {
		t.Error("Anonymous.Is(\"\") = true, anonymous must never own anything")
	}

	ada := Identity{Email: "ada@example.com"}
	if !ada.Is("ada@example.com") {
		t.Error("Is() should match the same email")
	}
	if ada.Is("Ada@example.com") {
		t.Error("Is() should compare emails case-sensitively")
	}
}

func TestVisibility(t *testing.T) {
	ada := Identity{Email: "ada@example.com"}
	bob := Identity{Email: "bob@example.com"}

	tests := []struct {
		name  string
		id    Identity
		owner string
		want  Visibility
	}{
		{"anonymous", Anonymous, "ada@example.com", Public},
		{"other user", bob, "ada@example.com", Authenticated},
		{"owner", ada, "ada@example.com", Owner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VisibilityForOwned(tt.id, tt.owner); got != tt.want {
				t.Errorf("VisibilityForOwned() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := VisibilityFor(Anonymous); got != Public {
		t.Errorf("VisibilityFor(Anonymous) = %v, want public", got)
	}
	if got := VisibilityFor(ada); got != Authenticated {
		t.Errorf("VisibilityFor(ada) = %v, want authenticated", got)
	}
}

func TestIdentityContext(t *testing.T) {
	if got := IdentityFromContext(context.Background()); got.Authenticated() {
		t.Errorf("IdentityFromContext(empty) = %+v, want Anonymous", got)
	}

	ctx := WithIdentity(context.Background(), Identity{Email: "ada@example.com"})
	if got := IdentityFromContext(ctx); !got.Is("ada@example.com") {
		t.Errorf("IdentityFromContext() = %+v", got)
	}
}
