package flows

import (
	"context"

	"github.com/samber/mo"

	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/internal/screen"
	"github.com/Skotchmaster/pawtopia/internal/session"
	"github.com/Skotchmaster/pawtopia/internal/validate"
)

type Profile struct {
	*Deps
	load screen.Action[models.AddressResponse]
	save screen.Action[struct{}]
}

func NewProfile(d *Deps) *Profile { return &Profile{Deps: d} }

func (p *Profile) Address(ctx context.Context) mo.Result[models.AddressResponse] {
	return withSession(ctx, p.Deps, func(s session.Session) mo.Result[models.AddressResponse] {
		return p.load.Run(ctx, func(ctx context.Context) mo.Result[models.AddressResponse] {
			return p.Users.GetAddress(ctx, s.UserID)
		})
	})
}

func (p *Profile) SaveAddress(ctx context.Context, form validate.AddressForm) mo.Result[struct{}] {
	if err := form.Validate(); err != nil {
		return invalid[struct{}](err)
	}
	return withSession(ctx, p.Deps, func(s session.Session) mo.Result[struct{}] {
		return p.save.Run(ctx, func(ctx context.Context) mo.Result[struct{}] {
			return p.Users.UpdateAddress(ctx, s.UserID, models.AddressRequest(form))
		})
	})
}

// Me returns the backend's view of the logged-in user.
func (p *Profile) Me(ctx context.Context) mo.Result[models.User] {
	return withSession(ctx, p.Deps, func(session.Session) mo.Result[models.User] {
		return p.Auth.Me(ctx)
	})
}
