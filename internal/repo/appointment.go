package repo

import (
	"context"
	"net/http"

	"github.com/samber/mo"

	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
)

type AppointmentRepo struct {
	Client *apiclient.Client
}

func decodeBooking(body []byte) (models.AppointmentResponse, error) {
	r, err := object(body)
	if err != nil {
		return models.AppointmentResponse{}, err
	}

	out := models.AppointmentResponse{
		Success:       true,
		Message:       "Appointment created successfully",
		AppointmentID: r.Get("appId").Int(),
	}
	if v := r.Get("success"); v.Exists() {
		out.Success = v.Bool()
	}
	if v := r.Get("message"); v.Exists() {
		out.Message = v.String()
	}
	return out, nil
}

// Book posts a booking. The user reference is nested as {"user": {"userId": ...}}.
func (a *AppointmentRepo) Book(ctx context.Context, req models.AppointmentRequest) mo.Result[models.AppointmentResponse] {
	return apiclient.Call(ctx, a.Client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/appointments/postAppointment",
		Body:   req,
	}, decodeBooking)
}

func (a *AppointmentRepo) ByEmail(ctx context.Context, email string) mo.Result[[]models.Appointment] {
	if email == "" {
		return apiclient.Invalid[[]models.Appointment]("User email not found")
	}
	return apiclient.Call(ctx, a.Client, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/appointments/byUserEmail/" + apiclient.Segment(email),
	}, apiclient.JSON[[]models.Appointment])
}
