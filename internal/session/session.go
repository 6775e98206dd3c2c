package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/pawtopia/pkg/logging"
)

const (
	prefix = "pawtopia."

	keyToken      = prefix + "auth_token"
	keyUserID     = prefix + "user_id"
	keyEmail      = prefix + "email"
	keyUsername   = prefix + "username"
	keyRole       = prefix + "role"
	keyLoggedIn   = prefix + "is_logged_in"
	keyProvider   = prefix + "auth_provider"
	keyProviderID = prefix + "provider_id"

	keyAdminToken = prefix + "admin_token"
	keyAdminUser  = prefix + "admin_username"

	keyPendingOrder = prefix + "pending_order_id"
	keyPendingRef   = prefix + "reference_number"
	keyPendingAt    = prefix + "pending_timestamp"
)

var (
	ErrNoSession         = errors.New("no active session")
	ErrIncompleteSession = errors.New("session requires token, user id, email and username")
)

type Session struct {
	Token        string
	UserID       int64
	Email        string
	Username     string
	Role         string
	AuthProvider string
	ProviderID   string
}

func (s Session) complete() bool {
	return s.Token != "" && s.UserID != 0 && s.Email != "" && s.Username != ""
}

// Store is the client-held record of the authenticated user. It is passed
// explicitly to every repository and flow.
type Store struct {
	kv KV
}

func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Save replaces the whole session. A partial session is rejected and leaves the
// stored one untouched.
func (s *Store) Save(ctx context.Context, sess Session) error {
	if !sess.complete() {
		return ErrIncompleteSession
	}

	values := map[string]string{
		keyToken:    sess.Token,
		keyUserID:   strconv.FormatInt(sess.UserID, 10),
		keyEmail:    sess.Email,
		keyUsername: sess.Username,
		keyLoggedIn: "true",
		keyRole:     sess.Role,
	}
	var stale []string
	if sess.AuthProvider != "" {
		values[keyProvider] = sess.AuthProvider
	} else {
		stale = append(stale, keyProvider)
	}
	if sess.ProviderID != "" {
		values[keyProviderID] = sess.ProviderID
	} else {
		stale = append(stale, keyProviderID)
	}

	if err := s.kv.SetMany(ctx, values); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := s.kv.Delete(ctx, stale...); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Logout clears every stored field.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.kv.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) string {
	v, _, err := s.kv.Get(ctx, key)
	if err != nil {
		logging.FromContext(ctx).Error("session_read_error", "key", key, "error", err)
		return ""
	}
	return v
}

func (s *Store) IsLoggedIn(ctx context.Context) bool {
	return s.get(ctx, keyLoggedIn) == "true" && s.Token(ctx) != ""
}

// Token implements apiclient.TokenSource.
func (s *Store) Token(ctx context.Context) string { return s.get(ctx, keyToken) }

func (s *Store) UserID(ctx context.Context) int64 {
	id, err := strconv.ParseInt(s.get(ctx, keyUserID), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func (s *Store) Email(ctx context.Context) string        { return s.get(ctx, keyEmail) }
func (s *Store) Username(ctx context.Context) string     { return s.get(ctx, keyUsername) }
func (s *Store) AuthProvider(ctx context.Context) string { return s.get(ctx, keyProvider) }
func (s *Store) ProviderID(ctx context.Context) string   { return s.get(ctx, keyProviderID) }

// Role prefers the stored role and falls back to the token's role claim.
func (s *Store) Role(ctx context.Context) string {
	if r := s.get(ctx, keyRole); r != "" {
		return r
	}
	return RoleFromToken(s.Token(ctx))
}

// Current returns the full session, or ErrNoSession unless every field is present.
func (s *Store) Current(ctx context.Context) (Session, error) {
	if !s.IsLoggedIn(ctx) {
		return Session{}, ErrNoSession
	}
	sess := Session{
		Token:        s.Token(ctx),
		UserID:       s.UserID(ctx),
		Email:        s.Email(ctx),
		Username:     s.Username(ctx),
		Role:         s.Role(ctx),
		AuthProvider: s.AuthProvider(ctx),
		ProviderID:   s.ProviderID(ctx),
	}
	if !sess.complete() {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// RoleFromToken reads the role claim without verifying the signature. The
// backend stays the authority; this only gates local navigation.
func RoleFromToken(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	if r, ok := claims["role"].(string); ok {
		return r
	}
	return ""
}

// SaveAdmin stores the admin panel token. The admin session is independent of
// the customer session.
func (s *Store) SaveAdmin(ctx context.Context, token, username string) error {
	if token == "" {
		return ErrIncompleteSession
	}
	if err := s.kv.SetMany(ctx, map[string]string{
		keyAdminToken: token,
		keyAdminUser:  username,
	}); err != nil {
		return fmt.Errorf("save admin session: %w", err)
	}
	return nil
}

func (s *Store) AdminUsername(ctx context.Context) string { return s.get(ctx, keyAdminUser) }

func (s *Store) AdminLogout(ctx context.Context) error {
	return s.kv.Delete(ctx, keyAdminToken, keyAdminUser)
}

// Admin returns a token source for admin-scoped endpoints.
func (s *Store) Admin() AdminTokens {
	return AdminTokens{s: s}
}

type AdminTokens struct {
	s *Store
}

func (a AdminTokens) Token(ctx context.Context) string { return a.s.get(ctx, keyAdminToken) }

type PendingPayment struct {
	OrderID         int
	ReferenceNumber string
	CreatedAt       time.Time
}

func (s *Store) SavePendingPayment(ctx context.Context, p PendingPayment) error {
	if err := s.kv.SetMany(ctx, map[string]string{
		keyPendingOrder: strconv.Itoa(p.OrderID),
		keyPendingRef:   p.ReferenceNumber,
		keyPendingAt:    strconv.FormatInt(p.CreatedAt.UnixMilli(), 10),
	}); err != nil {
		return fmt.Errorf("save pending payment: %w", err)
	}
	return nil
}

func (s *Store) PendingPayment(ctx context.Context) (PendingPayment, bool) {
	raw := s.get(ctx, keyPendingOrder)
	if raw == "" {
		return PendingPayment{}, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return PendingPayment{}, false
	}
	ms, _ := strconv.ParseInt(s.get(ctx, keyPendingAt), 10, 64)
	return PendingPayment{
		OrderID:         id,
		ReferenceNumber: s.get(ctx, keyPendingRef),
		CreatedAt:       time.UnixMilli(ms).UTC(),
	}, true
}

func (s *Store) ClearPendingPayment(ctx context.Context) error {
	return s.kv.Delete(ctx, keyPendingOrder, keyPendingRef, keyPendingAt)
}
