// Package storage defines the persistence contract shared by the postgres and
// in-memory backends, and the errors both of them return.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/user/forum-go/domain"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

// Unique constraint names, shared by the schema and the in-memory backend.
const (
	ConstraintUserEmail  = "users_email_key"
	ConstraintTopicSlug  = "topics_slug_key"
	ConstraintThreadSlug = "threads_slug_key"
)

// UniqueViolationError reports a write rejected by a uniqueness constraint.
type UniqueViolationError struct {
	Constraint string
	Err        error
}

func (e *UniqueViolationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage: unique constraint %q violated: %v", e.Constraint, e.Err)
	}
	return fmt.Sprintf("storage: unique constraint %q violated", e.Constraint)
}

func (e *UniqueViolationError) Unwrap() error { return e.Err }

// IsUniqueViolation reports whether err violates the named constraint.
// An empty constraint matches any unique violation.
func IsUniqueViolation(err error, constraint string) bool {
	var uv *UniqueViolationError
	if !errors.As(err, &uv) {
		return false
	}
	return constraint == "" || uv.Constraint == constraint
}

// UserStore persists users.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

// TopicStore persists topics.
type TopicStore interface {
	CreateTopic(ctx context.Context, t *domain.Topic) (*domain.Topic, error)
	GetTopicByID(ctx context.Context, id string) (*domain.Topic, error)
	GetTopicBySlug(ctx context.Context, slug string) (*domain.Topic, error)
	ListTopics(ctx context.Context) ([]*domain.Topic, error)
	ListTopicsByUser(ctx context.Context, userID string) ([]*domain.Topic, error)
	UpdateTopic(ctx context.Context, id string, patch domain.TopicPatch) (*domain.Topic, error)
	// DeleteTopic removes the topic with its threads and contributions and returns the removed title.
	DeleteTopic(ctx context.Context, id string) (string, error)
	TopicOwnerID(ctx context.Context, id string) (string, error)
}

// ThreadStore persists threads.
type ThreadStore interface {
	TopicExists(ctx context.Context, topicID string) (bool, error)
	ThreadSlugExists(ctx context.Context, slug string) (bool, error)
	CreateThread(ctx context.Context, t *domain.Thread) (*domain.Thread, error)
	GetThreadByID(ctx context.Context, id string) (*domain.Thread, error)
	ListThreadsByTopic(ctx context.Context, topicID string) ([]*domain.Thread, error)
	UpdateThread(ctx context.Context, id string, patch domain.ThreadPatch) (*domain.Thread, error)
	DeleteThread(ctx context.Context, id string) (*domain.Thread, error)
	ThreadOwnerID(ctx context.Context, id string) (string, error)
	// IncrementThreadViews adds delta to viewsCount for every listed thread. Unknown ids are ignored.
	IncrementThreadViews(ctx context.Context, deltas map[string]int) error
}

// ContributionStore persists contributions.
type ContributionStore interface {
	ThreadExists(ctx context.Context, threadID string) (bool, error)
	CreateContribution(ctx context.Context, c *domain.Contribution) (*domain.Contribution, error)
	GetContributionByID(ctx context.Context, id string) (*domain.Contribution, error)
	// ListContributionsByThread returns every contribution of the thread, flat,
	// oldest first, each with its author.
	ListContributionsByThread(ctx context.Context, threadID string) ([]*domain.Contribution, error)
	UpdateContribution(ctx context.Context, id string, patch domain.ContributionPatch) (*domain.Contribution, error)
	DeleteContribution(ctx context.Context, id string) (*domain.Contribution, error)
	ContributionOwnerID(ctx context.Context, id string) (string, error)
}

// Store is everything the application needs from a backend.
type Store interface {
	UserStore
	TopicStore
	ThreadStore
	ContributionStore
	Ping(ctx context.Context) error
	Close()
}

// ValidID reports whether id is a well-formed UUID. Callers treat malformed
// ids like unknown ones instead of sending them to the database.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
