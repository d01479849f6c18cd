package guard

import (
	"testing"

	"driveshare/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession is a minimal session provider: settable identity plus
// subscriber fanout.
type fakeSession struct {
	identity *auth.Identity
	subs     map[int]auth.Subscriber
	nextID   int
}

func newFakeSession() *fakeSession {
	return &fakeSession{subs: map[int]auth.Subscriber{}}
}

func (s *fakeSession) CurrentIdentity() *auth.Identity { return s.identity }

func (s *fakeSession) Subscribe(fn auth.Subscriber) int {
	s.nextID++
	s.subs[s.nextID] = fn
	return s.nextID
}

func (s *fakeSession) Unsubscribe(id int) { delete(s.subs, id) }

func (s *fakeSession) set(identity *auth.Identity) {
	s.identity = identity
	for _, fn := range s.subs {
		fn(identity)
	}
}

func protectedRoute(t *testing.T) Route {
	t.Helper()
	route, ok := FindRoute("my-listings")
	require.True(t, ok)
	require.True(t, route.Protected)
	return route
}

func TestMountRedirectsWithoutSession(t *testing.T) {
	session := newFakeSession()
	var redirects []string
	g := New(session, func(to string) { redirects = append(redirects, to) })
	defer g.Close()

	rendered := false
	mounted := g.Mount(protectedRoute(t), func() { rendered = true })

	assert.False(t, mounted)
	assert.False(t, rendered, "protected content must never render anonymously")
	assert.Equal(t, []string{LoginPath}, redirects)
	_, active := g.Active()
	assert.False(t, active)
}

func TestMountRendersWithSession(t *testing.T) {
	session := newFakeSession()
	session.identity = &auth.Identity{UID: "u1", Email: "riley@driveshare.dev"}
	var redirects []string
	g := New(session, func(to string) { redirects = append(redirects, to) })
	defer g.Close()

	rendered := false
	mounted := g.Mount(protectedRoute(t), func() { rendered = true })

	assert.True(t, mounted)
	assert.True(t, rendered)
	assert.Empty(t, redirects)
	active, ok := g.Active()
	require.True(t, ok)
	assert.Equal(t, "my-listings", active.Name)
}

func TestPublicRouteMountsAnonymously(t *testing.T) {
	session := newFakeSession()
	var redirects []string
	g := New(session, func(to string) { redirects = append(redirects, to) })
	defer g.Close()

	route, ok := FindRoute("browse-cars")
	require.True(t, ok)
	rendered := false
	assert.True(t, g.Mount(route, func() { rendered = true }))
	assert.True(t, rendered)
	assert.Empty(t, redirects)
}

func TestLogoutAfterMountRedirects(t *testing.T) {
	session := newFakeSession()
	session.identity = &auth.Identity{UID: "u1"}
	var redirects []string
	g := New(session, func(to string) { redirects = append(redirects, to) })
	defer g.Close()

	require.True(t, g.Mount(protectedRoute(t), nil))

	session.set(nil) // logout while the protected view is open

	assert.Equal(t, []string{LoginPath}, redirects)
	_, active := g.Active()
	assert.False(t, active)
}

func TestLogoutWhileOnPublicRouteDoesNotRedirect(t *testing.T) {
	session := newFakeSession()
	session.identity = &auth.Identity{UID: "u1"}
	var redirects []string
	g := New(session, func(to string) { redirects = append(redirects, to) })
	defer g.Close()

	route, _ := FindRoute("browse-cars")
	require.True(t, g.Mount(route, nil))

	session.set(nil)
	assert.Empty(t, redirects)
}

func TestLoginNotificationDoesNotRedirect(t *testing.T) {
	session := newFakeSession()
	session.identity = &auth.Identity{UID: "u1"}
	var redirects []string
	g := New(session, func(to string) { redirects = append(redirects, to) })
	defer g.Close()

	require.True(t, g.Mount(protectedRoute(t), nil))

	// A session change that still carries an identity leaves the view alone.
	session.set(&auth.Identity{UID: "u2"})
	assert.Empty(t, redirects)
	_, active := g.Active()
	assert.True(t, active)
}

func TestLeaveClearsActiveRoute(t *testing.T) {
	session := newFakeSession()
	session.identity = &auth.Identity{UID: "u1"}
	var redirects []string
	g := New(session, func(to string) { redirects = append(redirects, to) })
	defer g.Close()

	require.True(t, g.Mount(protectedRoute(t), nil))
	g.Leave()

	session.set(nil)
	assert.Empty(t, redirects, "no protected view mounted, nothing to redirect")
}
