package flows

import (
	"context"
	"strings"

	"github.com/samber/mo"

	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/internal/screen"
	"github.com/Skotchmaster/pawtopia/internal/session"
	"github.com/Skotchmaster/pawtopia/internal/validate"
	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
	"github.com/Skotchmaster/pawtopia/pkg/logging"
)

func sessionFrom(r models.LoginResponse, provider string) session.Session {
	role := r.Role
	if role == "" {
		role = session.RoleFromToken(r.Token)
	}
	s := session.Session{
		Token:    r.Token,
		UserID:   r.UserID,
		Email:    r.Email,
		Username: r.Username,
		Role:     role,
	}
	if provider != "" {
		s.AuthProvider = provider
		s.ProviderID = r.GoogleID
	}
	return s
}

// establish stores the session only after the backend accepted the credentials.
func (d *Deps) establish(ctx context.Context, res mo.Result[models.LoginResponse], provider string) mo.Result[session.Session] {
	if res.IsError() {
		return mo.Err[session.Session](res.Error())
	}
	sess := sessionFrom(res.MustGet(), provider)
	if err := d.Session.Save(ctx, sess); err != nil {
		return mo.Err[session.Session](&apiclient.Error{Kind: apiclient.KindParse, Message: "Login failed: Invalid response", Err: err})
	}
	logging.FromContext(ctx).Info("session_established", "user_id", sess.UserID, "provider", provider)
	return mo.Ok(sess)
}

type Login struct {
	*Deps
	action screen.Action[session.Session]
}

func NewLogin(d *Deps) *Login { return &Login{Deps: d} }

func (l *Login) State() screen.State { return l.action.State() }
func (l *Login) Cancel()             { l.action.Cancel() }

// Submit logs in with a username or email. On failure the stored session is not touched.
func (l *Login) Submit(ctx context.Context, form validate.LoginForm) mo.Result[session.Session] {
	if err := form.Validate(); err != nil {
		return invalid[session.Session](err)
	}
	return l.action.Run(ctx, func(ctx context.Context) mo.Result[session.Session] {
		return l.establish(ctx, l.Auth.Login(ctx, strings.TrimSpace(form.Username), form.Password), "")
	})
}

// Google exchanges a Google ID token for a backend session.
func (l *Login) Google(ctx context.Context, idToken string) mo.Result[session.Session] {
	return l.action.Run(ctx, func(ctx context.Context) mo.Result[session.Session] {
		return l.establish(ctx, l.Auth.GoogleExchange(ctx, idToken), models.ProviderGoogle)
	})
}

func (l *Login) Logout(ctx context.Context) error {
	return l.Session.Logout(ctx)
}

type Signup struct {
	*Deps
	action screen.Action[session.Session]
}

func NewSignup(d *Deps) *Signup { return &Signup{Deps: d} }

func (s *Signup) State() screen.State { return s.action.State() }

// Submit registers the account and logs straight in with the same credentials.
// Nothing is sent when the form is invalid.
func (s *Signup) Submit(ctx context.Context, form validate.SignupForm) mo.Result[session.Session] {
	if err := form.Validate(); err != nil {
		return invalid[session.Session](err)
	}
	req := form.Request()
	return s.action.Run(ctx, func(ctx context.Context) mo.Result[session.Session] {
		if res := s.Auth.Signup(ctx, req); res.IsError() {
			return mo.Err[session.Session](signupError(apiclient.ErrorOf(res)))
		}
		return s.establish(ctx, s.Auth.Login(ctx, req.Username, req.Password), "")
	})
}

func signupError(e *apiclient.Error) *apiclient.Error {
	if e.Kind != apiclient.KindHTTP {
		return e
	}
	msg := "Registration failed"
	switch {
	case strings.Contains(e.Message, "Username already registered"):
		msg = "Username is already taken"
	case strings.Contains(e.Message, "Email already registered"):
		msg = "Email is already registered"
	case e.Message != "":
		msg = e.Message
	}
	return &apiclient.Error{Kind: e.Kind, Status: e.Status, Message: msg, Err: e}
}
