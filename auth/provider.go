package auth

import (
	"context"
	"sort"
	"sync"
	"time"

	"driveshare/utils"

	"go.uber.org/zap"
)

// State is the session lifecycle state.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// refreshLeeway is how close to expiry a token may get before Token renews it.
const refreshLeeway = time.Minute

// Subscriber receives the identity after every committed session transition;
// nil means the session ended. By the time it runs the new state is fully
// visible, so reading back CurrentIdentity is always consistent.
type Subscriber func(*Identity)

// Provider owns the process-wide session: one active session at a time,
// single writer per transition. Route guards and resource stores subscribe
// for change notification instead of polling.
type Provider struct {
	idp  IdentityProvider
	flow FederatedFlow

	mu      sync.Mutex
	state   State
	cred    *Credential
	subs    map[int]Subscriber
	nextSub int

	logger *zap.Logger
}

// NewProvider creates an anonymous session provider backed by idp. flow may
// be nil if federated login is never used.
func NewProvider(idp IdentityProvider, flow FederatedFlow) *Provider {
	return &Provider{
		idp:    idp,
		flow:   flow,
		state:  StateAnonymous,
		subs:   make(map[int]Subscriber),
		logger: utils.GetLogger(),
	}
}

// Subscribe registers fn for session transitions and returns an id for
// Unsubscribe. fn is not called with the current state; read it directly.
func (p *Provider) Subscribe(fn Subscriber) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextSub++
	id := p.nextSub
	p.subs[id] = fn
	return id
}

// Unsubscribe removes a subscriber. Unknown ids are ignored.
func (p *Provider) Unsubscribe(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.subs, id)
}

// State returns the current lifecycle state.
func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// CurrentIdentity returns the signed-in identity, or nil when anonymous.
func (p *Provider) CurrentIdentity() *Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateAuthenticated || p.cred == nil {
		return nil
	}
	return p.cred.Identity()
}

// begin moves the session to authenticating. Only one sign-in may be in
// flight at a time.
func (p *Provider) begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateAuthenticating {
		return utils.NewAuthError("IN_PROGRESS", "Another sign-in is already in progress")
	}
	p.state = StateAuthenticating
	return nil
}

// commit finishes a sign-in attempt: authenticated with the credential on
// success, back to anonymous on failure. Subscribers run after the state is
// committed and the lock released.
func (p *Provider) commit(cred *Credential) {
	p.mu.Lock()
	var identity *Identity
	if cred != nil {
		p.state = StateAuthenticated
		p.cred = cred
		identity = cred.Identity()
	} else {
		p.state = StateAnonymous
		p.cred = nil
	}
	subs := p.snapshotSubs()
	p.mu.Unlock()

	for _, fn := range subs {
		fn(identity)
	}
}

// snapshotSubs copies the subscriber list in registration order. Callers must
// hold p.mu.
func (p *Provider) snapshotSubs() []Subscriber {
	ids := make([]int, 0, len(p.subs))
	for id := range p.subs {
		ids = append(ids, id)
	}
	// map iteration order is random; emission order follows registration
	sort.Ints(ids)
	subs := make([]Subscriber, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, p.subs[id])
	}
	return subs
}

// Register creates an account with the identity provider and establishes the
// session.
func (p *Provider) Register(ctx context.Context, email, password, displayName, photoURL string) (*Identity, error) {
	if err := p.begin(); err != nil {
		return nil, err
	}
	cred, err := p.idp.SignUp(ctx, email, password, displayName, photoURL)
	if err != nil {
		p.commit(nil)
		return nil, err
	}
	p.logger.Info("Registered new account", zap.String("email", cred.Email))
	p.commit(cred)
	return cred.Identity(), nil
}

// LoginWithPassword signs in with an email/password credential.
func (p *Provider) LoginWithPassword(ctx context.Context, email, password string) (*Identity, error) {
	if err := p.begin(); err != nil {
		return nil, err
	}
	cred, err := p.idp.SignInWithPassword(ctx, email, password)
	if err != nil {
		p.commit(nil)
		return nil, err
	}
	p.logger.Info("Signed in", zap.String("email", cred.Email))
	p.commit(cred)
	return cred.Identity(), nil
}

// LoginWithGoogle runs the injected federated flow and exchanges its ID token
// with the identity provider. Aborting the flow fails the login.
func (p *Provider) LoginWithGoogle(ctx context.Context) (*Identity, error) {
	if p.flow == nil {
		return nil, utils.NewAuthError("NO_FLOW", "Federated sign-in is not configured")
	}
	if err := p.begin(); err != nil {
		return nil, err
	}
	providerID, idToken, err := p.flow(ctx)
	if err != nil {
		p.commit(nil)
		return nil, utils.NewAuthError("FLOW_ABORTED", "Sign-in was cancelled")
	}
	cred, err := p.idp.SignInWithIDP(ctx, providerID, idToken)
	if err != nil {
		p.commit(nil)
		return nil, err
	}
	p.logger.Info("Signed in with federated provider", zap.String("email", cred.Email))
	p.commit(cred)
	return cred.Identity(), nil
}

// Logout clears the session. Calling it while already anonymous is a no-op.
func (p *Provider) Logout() {
	p.mu.Lock()
	if p.state != StateAuthenticated {
		p.mu.Unlock()
		return
	}
	p.state = StateAnonymous
	p.cred = nil
	subs := p.snapshotSubs()
	p.mu.Unlock()

	p.logger.Info("Signed out")
	for _, fn := range subs {
		fn(nil)
	}
}

// Token returns a fresh bearer token for the active session, renewing the
// credential when it is about to expire. Anonymous sessions yield an empty
// token and no error. A failed renewal invalidates the session.
func (p *Provider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.state != StateAuthenticated || p.cred == nil {
		p.mu.Unlock()
		return "", nil
	}
	cred := *p.cred
	p.mu.Unlock()

	if cred.ExpiresAt.IsZero() || time.Until(cred.ExpiresAt) > refreshLeeway {
		return cred.IDToken, nil
	}

	renewed, err := p.idp.RefreshCredential(ctx, cred.RefreshToken)
	if err != nil {
		p.logger.Warn("Token renewal failed, ending session", zap.Error(err))
		p.commit(nil)
		return "", err
	}
	p.adopt(renewed)
	return renewed.IDToken, nil
}

// adopt installs renewed token material, keeping profile fields the renewal
// endpoint does not echo back.
func (p *Provider) adopt(renewed *Credential) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateAuthenticated || p.cred == nil {
		return
	}
	if renewed.Email == "" {
		renewed.Email = p.cred.Email
	}
	if renewed.DisplayName == "" {
		renewed.DisplayName = p.cred.DisplayName
	}
	if renewed.PhotoURL == "" {
		renewed.PhotoURL = p.cred.PhotoURL
	}
	p.cred = renewed
}
