package app

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"wellmatch/internal/domain"
)

// View is the single active screen of the portal.
type View string

const (
	ViewLoading      View = "loading"
	ViewLogin        View = "login"
	ViewRegister     View = "register"
	ViewProfessional View = "professional"
	ViewAdmin        View = "admin"
)

// Authenticated reports whether v is a dashboard.
func (v View) Authenticated() bool {
	return v == ViewProfessional || v == ViewAdmin
}

func dashboardFor(role domain.Role) View {
	if role == domain.RoleAdmin {
		return ViewAdmin
	}
	return ViewProfessional
}

// Router is the portal's view state machine. Dashboards are entered and
// left only through session changes, so a dashboard is never shown without
// a session and the login view is never shown with one.
type Router struct {
	sessions *SessionStore
	msgs     Messages
	log      *zap.Logger
	gate     *Gate

	mu        sync.Mutex
	view      View
	notice    Notice
	listeners []func(View)
}

// NewRouter creates a router in the loading view and binds it to sessions.
func NewRouter(sessions *SessionStore, msgs Messages, log *zap.Logger) *Router {
	r := &Router{
		sessions: sessions,
		msgs:     msgs,
		log:      log.Named("router"),
		gate:     NewGate(),
		view:     ViewLoading,
	}
	sessions.Subscribe(r.onSession)
	return r
}

// View returns the active view.
func (r *Router) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// Notice returns the current inline message of the logged-out views.
func (r *Router) Notice() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notice
}

// Dismiss clears the notice.
func (r *Router) Dismiss() {
	r.mu.Lock()
	r.notice = Notice{}
	r.mu.Unlock()
}

// OnChange registers fn to be called with every new view.
func (r *Router) OnChange(fn func(View)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Start leaves the loading view by restoring the stored session. It is
// valid exactly once.
func (r *Router) Start(ctx context.Context) (View, error) {
	if r.View() != ViewLoading {
		return r.View(), domain.ErrInvalidTransition
	}
	sess, err := r.sessions.Restore(ctx)
	switch {
	case err != nil:
		r.moveTo(ViewLogin, errorNotice(r.msgs.ForError(err, MsgLoginFailed)))
	case sess == nil:
		r.moveTo(ViewLogin, Notice{})
	}
	return r.View(), nil
}

// ShowRegister switches the logged-out view to registration.
func (r *Router) ShowRegister() error {
	return r.toggle(ViewLogin, ViewRegister)
}

// ShowLogin switches the logged-out view back to login.
func (r *Router) ShowLogin() error {
	return r.toggle(ViewRegister, ViewLogin)
}

func (r *Router) toggle(from, to View) error {
	r.mu.Lock()
	if r.view == to {
		r.mu.Unlock()
		return nil
	}
	if r.view != from {
		r.mu.Unlock()
		return domain.ErrInvalidTransition
	}
	r.mu.Unlock()
	r.moveTo(to, Notice{})
	return nil
}

// Login submits credentials from a logged-out view. On success the session
// change moves the router to the dashboard for the role.
func (r *Router) Login(ctx context.Context, creds domain.Credentials) error {
	if v := r.View(); v != ViewLogin && v != ViewRegister {
		return domain.ErrInvalidTransition
	}
	done, err := r.gate.Begin("login")
	if err != nil {
		return err
	}
	defer done()

	r.Dismiss()
	if _, err := r.sessions.Login(ctx, creds); err != nil {
		r.setNotice(errorNotice(r.msgs.ForError(err, MsgLoginFailed)))
		return err
	}
	return nil
}

// Register submits the registration form. Success returns to the login view
// with a notice; it never creates a session.
func (r *Router) Register(ctx context.Context, reg domain.Registration) error {
	if r.View() != ViewRegister {
		return domain.ErrInvalidTransition
	}
	done, err := r.gate.Begin("register")
	if err != nil {
		return err
	}
	defer done()

	r.Dismiss()
	res, err := r.sessions.Register(ctx, reg)
	if err != nil {
		r.setNotice(errorNotice(r.msgs.ForError(err, MsgRegisterFailed)))
		return err
	}

	text := r.msgs.Text(MsgRegistered)
	if res.RequiresApproval {
		text = r.msgs.Text(MsgAwaitingApproval)
	}
	r.moveTo(ViewLogin, successNotice(text))
	return nil
}

// Logout ends the session from a dashboard.
func (r *Router) Logout(ctx context.Context) {
	r.sessions.Logout(ctx, ReasonRequested)
}

// Busy reports whether the login or register form is in flight.
func (r *Router) Busy() bool {
	return r.gate.Busy("login") || r.gate.Busy("register")
}

func (r *Router) onSession(c SessionChange) {
	if c.Session != nil {
		r.moveTo(dashboardFor(c.Session.Identity.Role), Notice{})
		return
	}

	var n Notice
	switch c.Reason {
	case ReasonExpired:
		n = errorNotice(r.msgs.Text(MsgSessionExpired))
	case ReasonUnauthorized:
		n = errorNotice(r.msgs.Text(MsgUnauthorized))
	}
	// Start decides the first view after loading.
	if r.View() == ViewLoading {
		return
	}
	r.moveTo(ViewLogin, n)
}

func (r *Router) setNotice(n Notice) {
	r.mu.Lock()
	r.notice = n
	r.mu.Unlock()
}

func (r *Router) moveTo(v View, n Notice) {
	r.mu.Lock()
	prev := r.view
	r.view = v
	r.notice = n
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	if prev != v {
		r.log.Info("view changed", zap.String("from", string(prev)), zap.String("to", string(v)))
	}
	for _, fn := range listeners {
		fn(v)
	}
}
