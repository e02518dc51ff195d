// Package ownership decides whether a user may change a resource they created.
// One Guard serves every resource type; it only needs a way to look up the
// creator of a resource by id.
package ownership

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/storage"
)

// OwnerLookup loads only the creator id of a resource. It returns
// storage.ErrNotFound when the resource does not exist.
type OwnerLookup interface {
	OwnerID(ctx context.Context, id string) (string, error)
}

// LookupFunc adapts a plain function to OwnerLookup.
type LookupFunc func(ctx context.Context, id string) (string, error)

// OwnerID calls f.
func (f LookupFunc) OwnerID(ctx context.Context, id string) (string, error) {
	return f(ctx, id)
}

// Action names what the caller is trying to do to the resource.
type Action string

const (
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Guard checks ownership of one resource type.
type Guard struct {
	resource  string
	lookup    OwnerLookup
	forbidden func(Action) string
}

// Option customizes a Guard.
type Option func(*Guard)

// WithForbiddenMessage replaces the default "You are not the owner of this <resource>" message.
func WithForbiddenMessage(msg func(Action) string) Option {
	return func(g *Guard) { g.forbidden = msg }
}

// NewGuard builds a guard for resource (e.g. "topic") backed by lookup.
func NewGuard(resource string, lookup OwnerLookup, opts ...Option) *Guard {
	g := &Guard{
		resource: resource,
		lookup:   lookup,
		forbidden: func(Action) string {
			return "You are not the owner of this " + resource
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsOwner reports whether userID created the resource. A missing resource is
// a NotFound error, never false.
func (g *Guard) IsOwner(ctx context.Context, userID, resourceID string) (bool, error) {
	if !storage.ValidID(resourceID) {
		return false, g.notFound(nil)
	}
	owner, err := g.lookup.OwnerID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, g.notFound(err)
		}
		return false, apperror.NewDatabaseError(fmt.Sprintf("failed to load %s owner", g.resource), err)
	}
	return owner == userID, nil
}

// Authorize returns nil when userID owns the resource and a Forbidden error otherwise.
func (g *Guard) Authorize(ctx context.Context, userID, resourceID string, action Action) error {
	ok, err := g.IsOwner(ctx, userID, resourceID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewForbiddenError(g.forbidden(action), nil)
	}
	return nil
}

func (g *Guard) notFound(err error) error {
	return apperror.NewNotFoundError(capitalize(g.resource)+" not found", err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
