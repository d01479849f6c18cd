package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Identity is the authenticated user as the rest of the SDK sees it.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Credential is what the identity provider hands back on a successful sign-in:
// the user's identity plus the token material needed to stay signed in.
type Credential struct {
	UID          string
	Email        string
	DisplayName  string
	PhotoURL     string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// Identity extracts the user-facing identity from a credential.
func (c *Credential) Identity() *Identity {
	return &Identity{
		UID:         c.UID,
		Email:       c.Email,
		DisplayName: c.DisplayName,
		PhotoURL:    c.PhotoURL,
	}
}

// IdentityProvider is the external identity service. Every failure it returns
// is an *utils.AuthError.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, displayName, photoURL string) (*Credential, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Credential, error)
	SignInWithIDP(ctx context.Context, providerID, idToken string) (*Credential, error)
	RefreshCredential(ctx context.Context, refreshToken string) (*Credential, error)
}

// FederatedFlow obtains an ID token from an external federated sign-in
// (Google OAuth in the original product). The SDK cannot pop a browser
// window, so the caller supplies the flow; returning an error aborts the
// login.
type FederatedFlow func(ctx context.Context) (providerID, idToken string, err error)

// tokenClaims reads identity claims out of a provider-issued ID token. The
// token was verified by the provider that minted it; the client only decodes.
func tokenClaims(idToken string) (uid, email, name, picture string) {
	parser := new(jwt.Parser)
	token, _, err := parser.ParseUnverified(idToken, jwt.MapClaims{})
	if err != nil {
		return "", "", "", ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", "", ""
	}
	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	uid = str("user_id")
	if uid == "" {
		uid = str("sub")
	}
	return uid, str("email"), str("name"), str("picture")
}
