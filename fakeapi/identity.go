package fakeapi

import (
	"context"
	"strings"
	"sync"
	"time"

	"driveshare/auth"
	"driveshare/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// IdentityDouble is an in-memory stand-in for the external identity provider.
// It satisfies auth.IdentityProvider, stores passwords bcrypt-hashed, and
// mints opaque tokens the fake backend can verify.
type IdentityDouble struct {
	mu       sync.Mutex
	users    map[string]*fakeUser // by email
	tokens   map[string]*fakeUser // by ID token
	refresh  map[string]*fakeUser // by refresh token
	tokenTTL time.Duration
}

type fakeUser struct {
	uid          string
	email        string
	displayName  string
	photoURL     string
	passwordHash []byte
}

func NewIdentityDouble() *IdentityDouble {
	return &IdentityDouble{
		users:    make(map[string]*fakeUser),
		tokens:   make(map[string]*fakeUser),
		refresh:  make(map[string]*fakeUser),
		tokenTTL: time.Hour,
	}
}

// SetTokenTTL shortens token lifetime, for refresh-path tests.
func (d *IdentityDouble) SetTokenTTL(ttl time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tokenTTL = ttl
}

func (d *IdentityDouble) credentialFor(u *fakeUser) *auth.Credential {
	idToken := uuid.NewString()
	refreshToken := uuid.NewString()
	d.tokens[idToken] = u
	d.refresh[refreshToken] = u
	return &auth.Credential{
		UID:          u.uid,
		Email:        u.email,
		DisplayName:  u.displayName,
		PhotoURL:     u.photoURL,
		IDToken:      idToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(d.tokenTTL),
	}
}

func (d *IdentityDouble) SignUp(ctx context.Context, email, password, displayName, photoURL string) (*auth.Credential, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.users[email]; exists {
		return nil, utils.NewAuthError("EMAIL_EXISTS", "Email already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.NewAuthError("INTERNAL", "Authentication failed, please try again")
	}
	u := &fakeUser{
		uid:          uuid.NewString(),
		email:        email,
		displayName:  displayName,
		photoURL:     photoURL,
		passwordHash: hash,
	}
	d.users[email] = u
	return d.credentialFor(u), nil
}

func (d *IdentityDouble) SignInWithPassword(ctx context.Context, email, password string) (*auth.Credential, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, exists := d.users[email]
	if !exists {
		return nil, utils.NewAuthError("EMAIL_NOT_FOUND", "Invalid email or password")
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		return nil, utils.NewAuthError("INVALID_PASSWORD", "Invalid email or password")
	}
	return d.credentialFor(u), nil
}

// SignInWithIDP accepts federated tokens of the form "email|displayName",
// provisioning the account on first sight the way the real provider does.
func (d *IdentityDouble) SignInWithIDP(ctx context.Context, providerID, idToken string) (*auth.Credential, error) {
	email, name, found := strings.Cut(idToken, "|")
	if !found || email == "" {
		return nil, utils.NewAuthError("INVALID_IDP_RESPONSE", "Authentication failed, please try again")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	u, exists := d.users[email]
	if !exists {
		u = &fakeUser{uid: uuid.NewString(), email: email, displayName: name}
		d.users[email] = u
	}
	return d.credentialFor(u), nil
}

func (d *IdentityDouble) RefreshCredential(ctx context.Context, refreshToken string) (*auth.Credential, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, exists := d.refresh[refreshToken]
	if !exists {
		return nil, utils.NewAuthError("INVALID_REFRESH_TOKEN", "Your session has expired. Please sign in again.")
	}
	delete(d.refresh, refreshToken)
	return d.credentialFor(u), nil
}

// verify resolves a bearer token minted by this double.
func (d *IdentityDouble) verify(token string) (*fakeUser, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.tokens[token]
	return u, ok
}

// RevokeToken invalidates an issued ID token, for invalidation tests.
func (d *IdentityDouble) RevokeToken(token string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.tokens, token)
}
