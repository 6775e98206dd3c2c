// Package validate runs the local form checks that gate every network call.
// A failing check never reaches a repository.
package validate

import (
	"regexp"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/pkg/apiclient"
)

const (
	MinPasswordLen = 6
	ContactDigits  = 11
)

var (
	emailRe = regexp.MustCompile(`^[A-Za-z0-9+._%\-]{1,256}@[A-Za-z0-9][A-Za-z0-9\-]{0,64}(\.[A-Za-z0-9][A-Za-z0-9\-]{0,25})+$`)

	// ServicePrices lists the bookable services and the prices offered for each.
	ServicePrices = map[string][]int{
		models.ServiceGrooming: {500, 1000},
		models.ServiceBoarding: {500, 1000},
	}
)

// FieldError names the offending input so a screen can render it inline.
type FieldError struct {
	Field string
	Err   *apiclient.Error
}

func (f *FieldError) Error() string { return f.Err.Error() }
func (f *FieldError) Unwrap() error { return f.Err }

func fail(field, msg string) error {
	return &FieldError{Field: field, Err: apiclient.Validation(msg)}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func Email(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

type LoginForm struct {
	Username string
	Password string
}

func (f LoginForm) Validate() error {
	if blank(f.Username) {
		return fail("username", "Username/Email cannot be empty")
	}
	if blank(f.Password) {
		return fail("password", "Password cannot be empty")
	}
	return nil
}

type SignupForm struct {
	Username        string
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

func (f SignupForm) Validate() error {
	switch {
	case blank(f.Username):
		return fail("username", "Username is required")
	case blank(f.FirstName):
		return fail("firstName", "First name is required")
	case blank(f.LastName):
		return fail("lastName", "Last name is required")
	case blank(f.Email):
		return fail("email", "Email is required")
	case !Email(f.Email):
		return fail("email", "Please enter a valid email address")
	case f.Password == "":
		return fail("password", "Password is required")
	case len(f.Password) < MinPasswordLen:
		return fail("password", "Password must be at least 6 characters")
	case f.ConfirmPassword == "":
		return fail("confirmPassword", "Please confirm your password")
	case f.Password != f.ConfirmPassword:
		return fail("confirmPassword", "Passwords don't match")
	}
	return nil
}

// Request trims the form into the backend's signup shape.
func (f SignupForm) Request() models.SignupRequest {
	return models.SignupRequest{
		Username:  strings.TrimSpace(f.Username),
		Password:  f.Password,
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.TrimSpace(f.Email),
		Role:      models.RoleCustomer,
	}
}

type AddressForm models.AddressRequest

func (f AddressForm) Validate() error {
	switch {
	case blank(f.Region):
		return fail("region", "Region is required")
	case blank(f.Province):
		return fail("province", "Province is required")
	case blank(f.City):
		return fail("city", "City is required")
	case blank(f.Barangay):
		return fail("barangay", "Barangay is required")
	case blank(f.PostalCode):
		return fail("postalCode", "Postal code is required")
	case blank(f.StreetBuildingHouseNo):
		return fail("streetBuildingHouseNo", "Street, building and house number are required")
	}
	return nil
}

// ContactNumber keeps the digits of s, capped at ContactDigits.
func ContactNumber(s string) string {
	digits := lo.Filter([]rune(s), func(r rune, _ int) bool { return r >= '0' && r <= '9' })
	if len(digits) > ContactDigits {
		digits = digits[:ContactDigits]
	}
	return string(digits)
}

type AppointmentForm struct {
	Email   string
	Contact string
	Date    time.Time
	// Time is the slot as "HH:mm".
	Time    string
	Service string
	Price   int
}

func (f AppointmentForm) Validate() error {
	if blank(ContactNumber(f.Contact)) {
		return fail("contactNo", "Contact number is required")
	}
	if f.Date.IsZero() {
		return fail("date", "Please select a date")
	}
	if _, err := time.Parse("15:04", f.Time); err != nil {
		return fail("time", "Please select a time")
	}
	prices, ok := ServicePrices[f.Service]
	if !ok {
		return fail("groomService", "Please select a service")
	}
	if !lo.Contains(prices, f.Price) {
		return fail("price", "Please select a valid price")
	}
	return nil
}

// Request builds the booking body for the given user. The date travels as epoch millis.
func (f AppointmentForm) Request(userID int64) models.AppointmentRequest {
	return models.AppointmentRequest{
		Email:        strings.TrimSpace(f.Email),
		ContactNo:    ContactNumber(f.Contact),
		Date:         f.Date.UnixMilli(),
		Time:         f.Time,
		GroomService: f.Service,
		Price:        f.Price,
		User:         models.UserRef{UserID: userID},
	}
}
