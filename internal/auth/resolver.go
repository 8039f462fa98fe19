package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/taskloop/taskloop/internal/events"
	"github.com/taskloop/taskloop/internal/identity"
)

const bearerScheme = "bearer "

// ErrUnauthenticated is the single external outcome for every credential
// failure: missing header, wrong scheme, bad token, unknown or inactive
// subject. The wrapped sentinels exist for logging only; collapsing them is
// deliberate so callers cannot probe which check fired.
var (
	ErrUnauthenticated     = errors.New("invalid or missing credentials")
	ErrMissingCredential   = fmt.Errorf("%w: no authorization header", ErrUnauthenticated)
	ErrMalformedCredential = fmt.Errorf("%w: malformed authorization header", ErrUnauthenticated)
	ErrInvalidCredential   = fmt.Errorf("%w: token rejected", ErrUnauthenticated)
	ErrIdentityNotFound    = fmt.Errorf("%w: subject not found", ErrUnauthenticated)
	ErrIdentityInactive    = fmt.Errorf("%w: subject inactive", ErrUnauthenticated)
)

// IdentityResolver turns a raw Authorization header into a user record.
type IdentityResolver struct {
	codec    *TokenCodec
	users    identity.Repository
	recorder events.Recorder
}

// NewIdentityResolver builds a resolver over the codec and user store.
func NewIdentityResolver(codec *TokenCodec, users identity.Repository, recorder events.Recorder) *IdentityResolver {
	if recorder == nil {
		recorder = events.Nop()
	}
	return &IdentityResolver{codec: codec, users: users, recorder: recorder}
}

// Resolve validates the bearer credential and loads the subject. It performs
// one repository read per successfully verified token and no writes.
func (r *IdentityResolver) Resolve(ctx context.Context, authorization string) (identity.User, error) {
	if authorization == "" {
		return identity.User{}, r.reject(ctx, "", ErrMissingCredential)
	}
	if !strings.HasPrefix(strings.ToLower(authorization), bearerScheme) {
		return identity.User{}, r.reject(ctx, "", ErrMalformedCredential)
	}
	tokenString := strings.TrimSpace(authorization[len(bearerScheme):])
	if tokenString == "" {
		return identity.User{}, r.reject(ctx, "", ErrMalformedCredential)
	}

	claims, err := r.codec.Verify(tokenString)
	if err != nil {
		return identity.User{}, r.reject(ctx, "", fmt.Errorf("%w: %w", ErrInvalidCredential, err))
	}
	if claims.Kind != KindAccess {
		return identity.User{}, r.reject(ctx, claims.Subject, fmt.Errorf("%w: wrong token kind", ErrInvalidCredential))
	}

	user, err := r.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return identity.User{}, r.reject(ctx, claims.Subject, ErrIdentityNotFound)
		}
		return identity.User{}, err
	}
	if !user.Active {
		return identity.User{}, r.reject(ctx, claims.Subject, ErrIdentityInactive)
	}

	return user, nil
}

func (r *IdentityResolver) reject(ctx context.Context, userID string, err error) error {
	r.recorder.Record(ctx, events.Event{
		Kind:    events.KindAuth,
		Action:  "resolve",
		UserID:  userID,
		Success: false,
		Reason:  err.Error(),
	})
	return err
}
