package flows

import (
	"context"

	"github.com/samber/mo"

	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/internal/screen"
	"github.com/Skotchmaster/pawtopia/internal/session"
	"github.com/Skotchmaster/pawtopia/internal/validate"
	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
	"github.com/Skotchmaster/pawtopia/pkg/logging"
)

type Booking struct {
	*Deps
	action screen.Action[models.AppointmentResponse]
}

func NewBooking(d *Deps) *Booking { return &Booking{Deps: d} }

func (b *Booking) State() screen.State { return b.action.State() }

// Book validates the form and posts the appointment for the logged-in user.
// The booking email defaults to the session's.
func (b *Booking) Book(ctx context.Context, form validate.AppointmentForm) mo.Result[models.AppointmentResponse] {
	if err := form.Validate(); err != nil {
		return invalid[models.AppointmentResponse](err)
	}
	return withSession(ctx, b.Deps, func(s session.Session) mo.Result[models.AppointmentResponse] {
		if s.UserID == 0 {
			return apiclient.Invalid[models.AppointmentResponse]("User not found")
		}
		if form.Email == "" {
			form.Email = s.Email
		}
		req := form.Request(s.UserID)
		return b.action.Run(ctx, func(ctx context.Context) mo.Result[models.AppointmentResponse] {
			res := b.Appointments.Book(ctx, req)
			if res.IsOk() {
				logging.FromContext(ctx).Info("appointment_booked",
					"appointment_id", res.MustGet().AppointmentID,
					"service", req.GroomService,
				)
			}
			return res
		})
	})
}

// List returns the appointments booked under the session email.
func (b *Booking) List(ctx context.Context) mo.Result[[]models.Appointment] {
	return withSession(ctx, b.Deps, func(s session.Session) mo.Result[[]models.Appointment] {
		return b.Appointments.ByEmail(ctx, s.Email)
	})
}
