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

// Admin drives the user-management panel. Its token is kept apart from the
// customer session.
type Admin struct {
	*Deps
	action screen.Action[struct{}]
}

func NewAdmin(d *Deps) *Admin { return &Admin{Deps: d} }

func forbidden() *apiclient.Error {
	return &apiclient.Error{Kind: apiclient.KindAuth, Message: "Access denied: admin role required"}
}

// Login stores the admin token. A token that carries a non-admin role claim is
// refused before it is saved.
func (a *Admin) Login(ctx context.Context, username, password string) mo.Result[string] {
	res := a.Admin.Login(ctx, strings.TrimSpace(username), password)
	if res.IsError() {
		return res
	}
	tok := res.MustGet()
	if role := session.RoleFromToken(tok); role != "" && !strings.EqualFold(role, models.RoleAdmin) {
		return mo.Err[string](forbidden())
	}
	if err := a.Session.SaveAdmin(ctx, tok, username); err != nil {
		return apiclient.Fail[string](err)
	}
	logging.FromContext(ctx).Info("admin_session_established", "username", username)
	return res
}

func (a *Admin) Logout(ctx context.Context) error {
	return a.Session.AdminLogout(ctx)
}

// gate refuses locally when the stored admin token says the holder is not an admin.
func (a *Admin) gate(ctx context.Context) *apiclient.Error {
	role := session.RoleFromToken(a.Session.Admin().Token(ctx))
	if role != "" && !strings.EqualFold(role, models.RoleAdmin) {
		return forbidden()
	}
	return nil
}

func (a *Admin) Users(ctx context.Context) mo.Result[[]models.User] {
	if e := a.gate(ctx); e != nil {
		return mo.Err[[]models.User](e)
	}
	return a.Admin.ListUsers(ctx)
}

func (a *Admin) Update(ctx context.Context, userID int64, upd models.AdminUserUpdate) mo.Result[struct{}] {
	if e := a.gate(ctx); e != nil {
		return mo.Err[struct{}](e)
	}
	if strings.TrimSpace(upd.Username) == "" {
		return apiclient.Invalid[struct{}]("Username is required")
	}
	if !validate.Email(upd.Email) {
		return apiclient.Invalid[struct{}]("Please enter a valid email address")
	}
	if upd.Password != "" && len(upd.Password) < validate.MinPasswordLen {
		return apiclient.Invalid[struct{}]("Password must be at least 6 characters")
	}
	return a.action.Run(ctx, func(ctx context.Context) mo.Result[struct{}] {
		return a.Admin.UpdateUser(ctx, userID, upd)
	})
}

func (a *Admin) Delete(ctx context.Context, userID int64) mo.Result[struct{}] {
	if e := a.gate(ctx); e != nil {
		return mo.Err[struct{}](e)
	}
	return a.action.Run(ctx, func(ctx context.Context) mo.Result[struct{}] {
		return a.Admin.DeleteUser(ctx, userID)
	})
}
