// Package flows holds the headless screen controllers. Each controller validates
// input locally, calls one repository, and reports a tagged result; the
// session is the only state that outlives a call.
package flows

import (
	"context"

	"github.com/samber/mo"

	"github.com/Skotchmaster/pawtopia/internal/repo"
	"github.com/Skotchmaster/pawtopia/internal/session"
	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
)

// Deps is passed explicitly to every controller.
type Deps struct {
	Session      *session.Store
	Auth         *repo.AuthRepo
	Users        *repo.UserRepo
	Appointments *repo.AppointmentRepo
	Products     *repo.ProductRepo
	Carts        *repo.CartRepo
	Orders       *repo.OrderRepo
	Payments     *repo.PaymentRepo
	Admin        *repo.AdminRepo
}

// NewDeps wires every repository to the customer client and the admin client.
func NewDeps(store *session.Store, api, admin *apiclient.Client) *Deps {
	return &Deps{
		Session:      store,
		Auth:         &repo.AuthRepo{Client: api},
		Users:        &repo.UserRepo{Client: api},
		Appointments: &repo.AppointmentRepo{Client: api},
		Products:     &repo.ProductRepo{Client: api},
		Carts:        &repo.CartRepo{Client: api},
		Orders:       &repo.OrderRepo{Client: api, Tokens: store},
		Payments:     &repo.PaymentRepo{Client: api},
		Admin:        &repo.AdminRepo{Client: admin, Tokens: store.Admin()},
	}
}

func loginRequired(err error) *apiclient.Error {
	return &apiclient.Error{Kind: apiclient.KindAuth, Message: "Please log in to continue", Err: err}
}

func (d *Deps) current(ctx context.Context) (session.Session, *apiclient.Error) {
	sess, err := d.Session.Current(ctx)
	if err != nil {
		return session.Session{}, loginRequired(err)
	}
	return sess, nil
}

// withSession runs fn for a logged-in user or fails with an auth error.
func withSession[T any](ctx context.Context, d *Deps, fn func(session.Session) mo.Result[T]) mo.Result[T] {
	sess, e := d.current(ctx)
	if e != nil {
		return mo.Err[T](e)
	}
	return fn(sess)
}

// invalid lifts a local validation failure into a result.
func invalid[T any](err error) mo.Result[T] {
	return mo.Err[T](err)
}
