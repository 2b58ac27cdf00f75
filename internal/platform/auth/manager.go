package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	domain "github.com/ronghua-heritage/storefront/internal/domain"
	"github.com/ronghua-heritage/storefront/internal/platform/kv"
)

var (
	errAuthStoreRequired  = errors.New("auth: store is required")
	errAuthSecretRequired = errors.New("auth: signing secret is required")
)

// ErrInvalidInput indicates a malformed registration or login request.
var ErrInvalidInput = errors.New("auth: invalid input")

// ErrUserExists indicates the username is already registered.
var ErrUserExists = errors.New("auth: user already exists")

// ErrInvalidCredentials indicates the username/password pair does not match.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// ErrUnauthenticated indicates a missing, invalid, or expired token.
var ErrUnauthenticated = errors.New("auth: unauthenticated")

// ErrUnavailable indicates the account store cannot fulfil the request.
var ErrUnavailable = errors.New("auth: unavailable")

const (
	defaultTokenTTL   = 24 * time.Hour
	minPasswordLength = 6
	maxUsernameLength = 32
)

// Mainland mobile numbers: 1 followed by 3-9 and nine more digits.
var phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

var usernamePattern = regexp.MustCompile(`^[\p{Han}a-zA-Z0-9_-]+$`)

// ManagerDeps wires the account store and token parameters.
type ManagerDeps struct {
	Store       kv.Store
	Secret      []byte
	TokenTTL    time.Duration
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

// Manager registers accounts, verifies credentials, and issues session tokens.
type Manager struct {
	store  kv.Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	newID  func() string
	logger func(context.Context, string, map[string]any)
}

// NewManager constructs a Manager enforcing dependency validation.
func NewManager(deps ManagerDeps) (*Manager, error) {
	if deps.Store == nil {
		return nil, errAuthStoreRequired
	}
	if len(deps.Secret) == 0 {
		return nil, errAuthSecretRequired
	}

	ttl := deps.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &Manager{
		store:  deps.Store,
		secret: deps.Secret,
		ttl:    ttl,
		now:    func() time.Time { return clock().UTC() },
		newID:  idGen,
		logger: logger,
	}, nil
}

// RegisterCommand carries a new account request.
type RegisterCommand struct {
	Username string
	Email    string
	Phone    string
	Password string
}

// credentialRecord is the stored account document.
type credentialRecord struct {
	User         domain.User `json:"user"`
	PasswordHash string      `json:"password_hash"`
}

func accountKey(username string) string {
	return "auth/accounts/" + strings.ToLower(strings.TrimSpace(username))
}

// Register validates the request and creates the account.
func (m *Manager) Register(ctx context.Context, cmd RegisterCommand) (domain.User, error) {
	if m == nil || m.store == nil {
		return domain.User{}, ErrUnavailable
	}

	username := strings.TrimSpace(cmd.Username)
	email := strings.TrimSpace(cmd.Email)
	phone := strings.TrimSpace(cmd.Phone)
	if username == "" || len(username) > maxUsernameLength || !usernamePattern.MatchString(username) {
		return domain.User{}, ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, ErrInvalidInput
	}
	if phone != "" && !phonePattern.MatchString(phone) {
		return domain.User{}, ErrInvalidInput
	}
	if len(cmd.Password) < minPasswordLength {
		return domain.User{}, ErrInvalidInput
	}

	key := accountKey(username)
	exists, err := m.store.Get(ctx, key, nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if exists {
		return domain.User{}, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	user := domain.User{
		ID:        m.newID(),
		Username:  username,
		Email:     email,
		Phone:     phone,
		CreatedAt: m.now(),
	}
	record := credentialRecord{User: user, PasswordHash: string(hash)}
	if err := m.store.Set(ctx, key, record); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	m.logger(ctx, "auth.registered", map[string]any{"user_id": user.ID})
	return user, nil
}

// Login verifies the credentials and issues a session. The session document
// is persisted so IsLoggedIn can answer without re-parsing tokens.
func (m *Manager) Login(ctx context.Context, username, password string) (domain.Session, error) {
	if m == nil || m.store == nil {
		return domain.Session{}, ErrUnavailable
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Session{}, ErrInvalidInput
	}

	var record credentialRecord
	found, err := m.store.Get(ctx, accountKey(username), &record)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !found {
		return domain.Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)); err != nil {
		return domain.Session{}, ErrInvalidCredentials
	}

	now := m.now()
	expires := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   record.User.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	session := domain.Session{
		Token:     token,
		User:      record.User,
		IssuedAt:  now,
		ExpiresAt: expires,
	}
	if err := m.store.Set(ctx, kv.UserKey(record.User.ID, kv.KeySession), session); err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	m.logger(ctx, "auth.logged_in", map[string]any{"user_id": record.User.ID})
	return session, nil
}

// Logout discards the stored session. Logging out twice is a no-op.
func (m *Manager) Logout(ctx context.Context, userID string) error {
	if m == nil || m.store == nil {
		return ErrUnavailable
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return ErrInvalidInput
	}
	if err := m.store.Remove(ctx, kv.UserKey(uid, kv.KeySession)); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	m.logger(ctx, "auth.logged_out", map[string]any{"user_id": uid})
	return nil
}

// IsLoggedIn reports whether the user holds an unexpired stored session.
func (m *Manager) IsLoggedIn(ctx context.Context, userID string) (bool, error) {
	if m == nil || m.store == nil {
		return false, ErrUnavailable
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return false, ErrInvalidInput
	}

	var session domain.Session
	found, err := m.store.Get(ctx, kv.UserKey(uid, kv.KeySession), &session)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !found {
		return false, nil
	}
	return !session.Expired(m.now()), nil
}

// VerifyToken parses and validates the bearer token, returning the identity
// it names. The stored session must still exist, so logout revokes tokens.
func (m *Manager) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	if m == nil || m.store == nil {
		return nil, ErrUnavailable
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthenticated
	}

	// Claims validation is done against the injected clock below, not the
	// parser's wall clock.
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || claims.Subject == "" {
		return nil, ErrUnauthenticated
	}
	if claims.ExpiresAt == nil || m.now().After(claims.ExpiresAt.Time) {
		return nil, ErrUnauthenticated
	}

	var session domain.Session
	found, err := m.store.Get(ctx, kv.UserKey(claims.Subject, kv.KeySession), &session)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !found || session.Expired(m.now()) || session.Token != token {
		return nil, ErrUnauthenticated
	}

	return &Identity{
		UID:      session.User.ID,
		Username: session.User.Username,
		Email:    session.User.Email,
	}, nil
}

// CurrentUser resolves the user behind a bearer token.
func (m *Manager) CurrentUser(ctx context.Context, token string) (domain.User, error) {
	identity, err := m.VerifyToken(ctx, token)
	if err != nil {
		return domain.User{}, err
	}

	var session domain.Session
	found, err := m.store.Get(ctx, kv.UserKey(identity.UID, kv.KeySession), &session)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !found {
		return domain.User{}, ErrUnauthenticated
	}
	return session.User, nil
}
