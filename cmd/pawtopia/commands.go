package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/samber/mo"

	"github.com/Skotchmaster/pawtopia/internal/catalog"
	"github.com/Skotchmaster/pawtopia/internal/checkout"
	"github.com/Skotchmaster/pawtopia/internal/flows"
	"github.com/Skotchmaster/pawtopia/internal/models"
	"github.com/Skotchmaster/pawtopia/internal/mykafka"
	"github.com/Skotchmaster/pawtopia/internal/payreturn"
	"github.com/Skotchmaster/pawtopia/internal/validate"
)

var errUsage = errors.New("usage")

const usageText = `usage: pawtopia <command> [flags]

account:   login, signup, google, logout, whoami
shop:      products, cart, cart-add, cart-qty, cart-rm, checkout, orders, order
profile:   address, address-set
services:  book, appointments
admin:     admin-login, admin-logout, admin-users, admin-update, admin-delete

Run "pawtopia <command> -h" for the flags of a command.`

func usage() {
	fmt.Fprintln(os.Stderr, usageText)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// show prints the value of an Ok result or returns its error.
func show[T any](res mo.Result[T]) error {
	if res.IsError() {
		return res.Error()
	}
	return printJSON(os.Stdout, res.MustGet())
}

func done[T any](res mo.Result[T], msg string) error {
	if res.IsError() {
		return res.Error()
	}
	fmt.Println(msg)
	return nil
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	d := a.deps

	switch cmd {
	case "login":
		user := fs.String("u", "", "username or email")
		pass := fs.String("p", "", "password")
		if err := fs.Parse(args); err != nil {
			return err
		}
		res := flows.NewLogin(d).Submit(ctx, validate.LoginForm{Username: *user, Password: *pass})
		return done(res, "Login successful")

	case "signup":
		f := validate.SignupForm{}
		fs.StringVar(&f.Username, "u", "", "username")
		fs.StringVar(&f.FirstName, "first", "", "first name")
		fs.StringVar(&f.LastName, "last", "", "last name")
		fs.StringVar(&f.Email, "email", "", "email")
		fs.StringVar(&f.Password, "p", "", "password")
		fs.StringVar(&f.ConfirmPassword, "confirm", "", "confirm password")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return done(flows.NewSignup(d).Submit(ctx, f), "Registration successful!")

	case "google":
		idToken := fs.String("id-token", "", "Google ID token")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return done(flows.NewLogin(d).Google(ctx, *idToken), "Login successful")

	case "logout":
		if err := flows.NewLogin(d).Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil

	case "whoami":
		sess, err := d.Session.Current(ctx)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, map[string]any{
			"userId":       sess.UserID,
			"username":     sess.Username,
			"email":        sess.Email,
			"role":         sess.Role,
			"authProvider": sess.AuthProvider,
		})

	case "products":
		typ := fs.String("type", catalog.AllTypes, "one of: "+strings.Join(catalog.Types, ", "))
		q := fs.String("q", "", "search text")
		page := fs.Int("page", 1, "page number")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return show(flows.NewProducts(d).Show(ctx, catalog.Query{Type: *typ, Text: *q, Page: *page}))

	case "cart":
		return show(flows.NewCart(d).Get(ctx))

	case "cart-add":
		product := fs.Int("product", 0, "product id")
		qty := fs.Int("qty", 1, "quantity")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return show(flows.NewCart(d).Add(ctx, *product, *qty))

	case "cart-qty":
		item := fs.Int("item", 0, "cart item id")
		qty := fs.Int("qty", 1, "quantity")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return done(flows.NewCart(d).SetQuantity(ctx, *item, *qty), "Quantity updated")

	case "cart-rm":
		item := fs.Int("item", 0, "cart item id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return done(flows.NewCart(d).Remove(ctx, *item), "Item removed")

	case "address":
		return show(flows.NewProfile(d).Address(ctx))

	case "address-set":
		f := validate.AddressForm{}
		fs.StringVar(&f.Region, "region", "", "region")
		fs.StringVar(&f.Province, "province", "", "province")
		fs.StringVar(&f.City, "city", "", "city")
		fs.StringVar(&f.Barangay, "barangay", "", "barangay")
		fs.StringVar(&f.PostalCode, "postal", "", "postal code")
		fs.StringVar(&f.StreetBuildingHouseNo, "street", "", "street, building, house no.")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return done(flows.NewProfile(d).SaveAddress(ctx, f), "Address saved")

	case "book":
		f := validate.AppointmentForm{}
		date := fs.String("date", "", "date as YYYY-MM-DD")
		fs.StringVar(&f.Time, "time", "", "time as HH:mm")
		fs.StringVar(&f.Service, "service", models.ServiceGrooming, "Grooming or Boarding")
		fs.IntVar(&f.Price, "price", 500, "500 or 1000")
		fs.StringVar(&f.Contact, "contact", "", "contact number")
		fs.StringVar(&f.Email, "email", "", "email (defaults to the session email)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *date != "" {
			t, err := time.ParseInLocation("2006-01-02", *date, time.Local)
			if err != nil {
				return fmt.Errorf("invalid -date %q: %w", *date, err)
			}
			f.Date = t
		}
		return show(flows.NewBooking(d).Book(ctx, f))

	case "appointments":
		return show(flows.NewBooking(d).List(ctx))

	case "orders":
		return show(flows.NewOrders(d).List(ctx))

	case "order":
		id := fs.Int("id", 0, "order id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return show(flows.NewOrders(d).Details(ctx, *id))

	case "checkout":
		method := fs.String("method", "cod", "cod or gcash")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return a.checkout(ctx, *method)

	case "admin-login":
		user := fs.String("u", "", "admin username")
		pass := fs.String("p", "", "admin password")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return done(flows.NewAdmin(d).Login(ctx, *user, *pass), "Admin login successful")

	case "admin-logout":
		if err := flows.NewAdmin(d).Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Admin logged out")
		return nil

	case "admin-users":
		return show(flows.NewAdmin(d).Users(ctx))

	case "admin-update":
		id := fs.Int64("id", 0, "user id")
		upd := models.AdminUserUpdate{}
		fs.StringVar(&upd.Username, "username", "", "username")
		fs.StringVar(&upd.FirstName, "first", "", "first name")
		fs.StringVar(&upd.LastName, "last", "", "last name")
		fs.StringVar(&upd.Email, "email", "", "email")
		fs.StringVar(&upd.Role, "role", models.RoleCustomer, "CUSTOMER or ADMIN")
		fs.StringVar(&upd.Password, "password", "", "new password (blank keeps the current one)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return done(flows.NewAdmin(d).Update(ctx, *id, upd), "User updated")

	case "admin-delete":
		id := fs.Int64("id", 0, "user id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return done(flows.NewAdmin(d).Delete(ctx, *id), "User deleted")

	default:
		return errUsage
	}
}

func paymentMethod(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cod", strings.ToLower(models.PaymentCOD):
		return models.PaymentCOD, nil
	case "gcash":
		return models.PaymentGCash, nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

func (a *app) checkout(ctx context.Context, raw string) error {
	method, err := paymentMethod(raw)
	if err != nil {
		return err
	}

	events := mykafka.New(a.cfg.KafkaBrokers, a.cfg.KafkaTopic)
	defer func() {
		if err := events.Close(); err != nil {
			a.logger.Error("kafka_close_failed", "error", err)
		}
	}()

	var arm func() <-chan struct{}
	if method == models.PaymentGCash {
		ln := payreturn.New(a.cfg.PaymentReturnAddr, a.logger)
		if err := ln.Start(); err != nil {
			a.logger.Warn("payreturn_unavailable", "error", err)
		} else {
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = ln.Shutdown(sctx)
			}()
			arm = func() <-chan struct{} { return ln.Arm().Done() }
			fmt.Printf("Return page: %s\n", ln.ReturnURL())
		}
	}

	opener := checkout.FirstOf(systemBrowser{}, printURL{w: os.Stdout})
	flow := flows.NewCheckout(a.deps, opener, events, arm, a.cfg.PaymentFallback)

	res := flows.CheckoutCart(ctx, a.deps, flow, method)
	if res.IsError() {
		return res.Error()
	}
	conf := res.MustGet()
	fmt.Printf("Order #%d: %s\n", conf.Order.OrderID, conf.Message)
	if len(conf.Uncleared) > 0 {
		a.logger.Warn("cart_items_left", "cart_item_ids", conf.Uncleared)
	}
	return nil
}
