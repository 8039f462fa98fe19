package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/taskloop/taskloop/internal/config"
	"github.com/taskloop/taskloop/internal/events"
	"github.com/taskloop/taskloop/internal/identity"
)

// ErrInvalidCredentials is returned for every failed login regardless of
// whether the email was unknown, the password wrong, or the account inactive.
var ErrInvalidCredentials = errors.New("incorrect email or password")

// dummyPasswordHash keeps the bcrypt comparison cost in the unknown-email
// path so login latency does not reveal whether an address is registered.
// It is not a real credential and matches no password.
var dummyPasswordHash = []byte("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")

// Service orchestrates registration and login. Token verification lives in
// IdentityResolver; this service is only invoked when new credentials are
// minted.
type Service struct {
	cfg      config.Config
	users    identity.Repository
	hasher   *PasswordHasher
	codec    *TokenCodec
	recorder events.Recorder
}

// NewService builds the authentication service.
func NewService(cfg config.Config, users identity.Repository, hasher *PasswordHasher, codec *TokenCodec, recorder events.Recorder) *Service {
	if recorder == nil {
		recorder = events.Nop()
	}
	return &Service{cfg: cfg, users: users, hasher: hasher, codec: codec, recorder: recorder}
}

// RegisterInput captures registration request data.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Session pairs a user with a freshly issued access token.
type Session struct {
	User        identity.User
	AccessToken string
	ExpiresIn   int64
}

// Register validates the input, hashes the password, and persists a new
// active user, returning it with an access token. The email pre-check exists
// for clear error reporting only; the repository's uniqueness guarantee is
// authoritative, so a duplicate insert that loses a race still comes back as
// identity.ErrEmailTaken.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Session, error) {
	if err := Evaluate(input.Email, EmailRules()); err != nil {
		return Session{}, err
	}
	if err := Evaluate(input.Password, PasswordRules(s.cfg.PasswordMinLen)); err != nil {
		return Session{}, err
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		s.record(ctx, "register", "", false, "email already registered")
		return Session{}, identity.ErrEmailTaken
	} else if !errors.Is(err, identity.ErrNotFound) {
		return Session{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return Session{}, err
	}

	now := time.Now().UTC()
	user := identity.User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			s.record(ctx, "register", "", false, "duplicate insert lost race")
		}
		return Session{}, err
	}

	session, err := s.issue(user)
	if err != nil {
		return Session{}, err
	}
	s.record(ctx, "register", user.ID, true, "")
	return session, nil
}

// Login verifies the email/password pair and issues an access token. Unknown
// email, wrong password, and inactive account all collapse into
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			s.hasher.Verify(password, dummyPasswordHash)
			s.record(ctx, "login", "", false, "unknown email")
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.record(ctx, "login", user.ID, false, "password mismatch")
		return Session{}, ErrInvalidCredentials
	}
	if !user.Active {
		s.record(ctx, "login", user.ID, false, "inactive user")
		return Session{}, ErrInvalidCredentials
	}

	session, err := s.issue(user)
	if err != nil {
		return Session{}, err
	}
	s.record(ctx, "login", user.ID, true, "")
	return session, nil
}

func (s *Service) issue(user identity.User) (Session, error) {
	token, err := s.codec.Issue(user.ID, KindAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return Session{}, err
	}
	return Session{
		User:        user,
		AccessToken: token,
		ExpiresIn:   int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) record(ctx context.Context, action, userID string, success bool, reason string) {
	s.recorder.Record(ctx, events.Event{
		Kind:    events.KindAuth,
		Action:  action,
		UserID:  userID,
		Success: success,
		Reason:  reason,
	})
}
