// Package authz enforces resource ownership. A resource that exists but
// belongs to another identity is reported exactly like one that does not
// exist, so callers cannot probe for other users' resource ids.
package authz

import (
	"context"
	"errors"
)

// ErrNotFound is returned both when a resource is absent and when it belongs
// to a different identity. Domain packages alias this sentinel for their own
// not-found results so the two cases stay indistinguishable in shape.
var ErrNotFound = errors.New("resource not found")

// Owned is implemented by resources that belong to exactly one identity.
type Owned interface {
	Owner() string
}

// Authorize confirms the resource belongs to the identity.
func Authorize(identityID string, resource Owned) error {
	if resource.Owner() != identityID {
		return ErrNotFound
	}
	return nil
}

// Enforce loads the resource and confirms ownership before returning it.
// Loader errors pass through untouched; loaders are expected to return
// ErrNotFound for absent resources.
func Enforce[T Owned](ctx context.Context, identityID, resourceID string, load func(context.Context, string) (T, error)) (T, error) {
	resource, err := load(ctx, resourceID)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := Authorize(identityID, resource); err != nil {
		var zero T
		return zero, err
	}
	return resource, nil
}
