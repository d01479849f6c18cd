// Package guard gates protected views behind session presence: a protected
// view mounts only with a signed-in identity, and a session that ends while
// the view is open redirects instead of leaving stale content mounted.
package guard

import (
	"sync"

	"driveshare/auth"
	"driveshare/utils"

	"go.uber.org/zap"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// Route is one navigable view.
type Route struct {
	Name      string
	Path      string
	Protected bool
}

// Routes is the application route table.
var Routes = []Route{
	{Name: "home", Path: "/"},
	{Name: "login", Path: "/login"},
	{Name: "register", Path: "/register"},
	{Name: "browse-cars", Path: "/browse-cars"},
	{Name: "car-details", Path: "/car/:id"},
	{Name: "add-car", Path: "/add-car", Protected: true},
	{Name: "my-listings", Path: "/my-listings", Protected: true},
	{Name: "my-bookings", Path: "/my-bookings", Protected: true},
}

// FindRoute looks a route up by name.
func FindRoute(name string) (Route, bool) {
	for _, r := range Routes {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// Session is the slice of the session provider the guard consults.
type Session interface {
	CurrentIdentity() *auth.Identity
	Subscribe(auth.Subscriber) int
	Unsubscribe(int)
}

// View renders a page. Rendering itself is outside this package's concern.
type View func()

// Guard decides whether a view mounts. It subscribes to the session so a
// logout after mount still redirects.
type Guard struct {
	session  Session
	redirect func(path string)

	mu     sync.Mutex
	active *Route
	subID  int
}

// New builds a guard; redirect is invoked with the target path whenever a
// protected mount (or an already-mounted protected view) lacks a session.
func New(session Session, redirect func(path string)) *Guard {
	g := &Guard{session: session, redirect: redirect}
	g.subID = session.Subscribe(g.onSessionChange)
	return g
}

// Close detaches the guard from the session provider.
func (g *Guard) Close() {
	g.session.Unsubscribe(g.subID)
}

// Mount renders view for route. For a protected route with no identity it
// redirects to the login view instead and reports false.
func (g *Guard) Mount(route Route, view View) bool {
	if route.Protected && g.session.CurrentIdentity() == nil {
		utils.GetLogger().Debug("Redirecting unauthenticated visitor",
			zap.String("route", route.Name), zap.String("to", LoginPath))
		g.redirect(LoginPath)
		return false
	}

	g.mu.Lock()
	r := route
	g.active = &r
	g.mu.Unlock()

	if view != nil {
		view()
	}
	return true
}

// Leave clears the active route, e.g. when the consumer navigates away on
// its own.
func (g *Guard) Leave() {
	g.mu.Lock()
	g.active = nil
	g.mu.Unlock()
}

// Active returns the currently mounted route, if any.
func (g *Guard) Active() (Route, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == nil {
		return Route{}, false
	}
	return *g.active, true
}

// onSessionChange redirects away from a mounted protected view when the
// session ends.
func (g *Guard) onSessionChange(identity *auth.Identity) {
	if identity != nil {
		return
	}
	g.mu.Lock()
	mountedProtected := g.active != nil && g.active.Protected
	if mountedProtected {
		g.active = nil
	}
	g.mu.Unlock()

	if mountedProtected {
		g.redirect(LoginPath)
	}
}
