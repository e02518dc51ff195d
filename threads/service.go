// Package threads implements the thread resource. Thread slugs never
// conflict: a taken slug gets the first free numeric suffix.
package threads

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/domain"
	"github.com/user/forum-go/logger"
	"github.com/user/forum-go/ownership"
	"github.com/user/forum-go/slug"
	"github.com/user/forum-go/storage"
)

const (
	msgNotFound      = "Thread not found"
	msgTopicNotFound = "Topic not found"
	msgConflict      = "A thread with the same slug already exists."
)

// ThreadStore is the part of the storage layer ThreadService needs.
type ThreadStore interface {
	TopicExists(ctx context.Context, topicID string) (bool, error)
	ThreadSlugExists(ctx context.Context, slug string) (bool, error)
	CreateThread(ctx context.Context, t *domain.Thread) (*domain.Thread, error)
	GetThreadByID(ctx context.Context, id string) (*domain.Thread, error)
	ListThreadsByTopic(ctx context.Context, topicID string) ([]*domain.Thread, error)
	UpdateThread(ctx context.Context, id string, patch domain.ThreadPatch) (*domain.Thread, error)
	DeleteThread(ctx context.Context, id string) (*domain.Thread, error)
	ThreadOwnerID(ctx context.Context, id string) (string, error)
}

// ViewRecorder counts thread reads.
type ViewRecorder interface {
	Record(threadID string)
}

type noViews struct{}

func (noViews) Record(string) {}

// ThreadService holds the thread rules.
type ThreadService struct {
	store ThreadStore
	views ViewRecorder
	guard *ownership.Guard
	log   *zap.Logger
}

// NewThreadService creates a new ThreadService. views may be nil, in which
// case reads are not counted.
func NewThreadService(store ThreadStore, views ViewRecorder, log *zap.Logger) *ThreadService {
	if views == nil {
		views = noViews{}
	}
	return &ThreadService{
		store: store,
		views: views,
		guard: ownership.NewGuard("thread", ownership.LookupFunc(store.ThreadOwnerID),
			ownership.WithForbiddenMessage(func(a ownership.Action) string {
				return "You can only " + string(a) + " your own thread."
			}),
		),
		log: logger.OrNop(log),
	}
}

// Create inserts a thread into an existing topic. Nothing is written when the
// topic is missing.
func (s *ThreadService) Create(ctx context.Context, userID string, req CreateThreadRequest) (*domain.Thread, error) {
	if err := s.ensureTopic(ctx, req.TopicID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	base := slug.Make(title)
	if base == "" {
		return nil, apperror.NewValidationError("validation failed", []apperror.FieldError{
			{Field: "title", Rule: "slug", Message: "title must contain at least one letter or digit"},
		})
	}
	threadSlug, err := slug.Unique(ctx, base, s.store.ThreadSlugExists)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to check thread slug", err)
	}

	category := domain.CategoryDiscussion
	if req.Category != nil {
		category = *req.Category
	}

	created, err := s.store.CreateThread(ctx, &domain.Thread{
		Slug:           threadSlug,
		Title:          title,
		StarterMessage: req.StarterMessage,
		TopicID:        req.TopicID,
		CreatedByID:    userID,
		Category:       category,
	})
	if err != nil {
		// Lost a race for the probed slug. No retry; the caller may resubmit.
		if storage.IsUniqueViolation(err, storage.ConstraintThreadSlug) {
			return nil, apperror.NewConflictError(msgConflict, nil)
		}
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperror.NewNotFoundError(msgTopicNotFound, err)
		}
		return nil, apperror.NewDatabaseError("failed to create thread", err)
	}

	s.log.Info("thread created", zap.String("thread_id", created.ID), zap.String("slug", created.Slug), zap.String("topic_id", created.TopicID))
	return created, nil
}

// FindByTopic returns the threads of an existing topic, newest first.
func (s *ThreadService) FindByTopic(ctx context.Context, topicID string) ([]*domain.Thread, error) {
	if err := s.ensureTopic(ctx, topicID); err != nil {
		return nil, err
	}
	list, err := s.store.ListThreadsByTopic(ctx, topicID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list threads", err)
	}
	return list, nil
}

// FindOne returns the thread and counts a view of it.
func (s *ThreadService) FindOne(ctx context.Context, id string) (*domain.Thread, error) {
	t, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.views.Record(t.ID)
	return t, nil
}

// Exists fails with NotFound unless the thread exists. It does not count a view.
func (s *ThreadService) Exists(ctx context.Context, id string) error {
	_, err := s.get(ctx, id)
	return err
}

// IsOwner reports whether userID created the thread.
func (s *ThreadService) IsOwner(ctx context.Context, userID, id string) (bool, error) {
	return s.guard.IsOwner(ctx, userID, id)
}

// Update applies a partial update. The slug keeps its original value even
// when the title changes.
func (s *ThreadService) Update(ctx context.Context, userID, id string, req UpdateThreadRequest) (*domain.Thread, error) {
	if err := s.guard.Authorize(ctx, userID, id, ownership.ActionEdit); err != nil {
		return nil, err
	}

	patch := domain.ThreadPatch{
		StarterMessage: req.StarterMessage,
		Category:       req.Category,
		Pinned:         req.Pinned,
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		patch.Title = &title
	}

	updated, err := s.store.UpdateThread(ctx, id, patch)
	if err != nil {
		return nil, lookupError(err, "failed to update thread")
	}
	return updated, nil
}

// Delete removes the thread with its contributions and returns it.
func (s *ThreadService) Delete(ctx context.Context, userID, id string) (*domain.Thread, error) {
	if err := s.guard.Authorize(ctx, userID, id, ownership.ActionDelete); err != nil {
		return nil, err
	}
	deleted, err := s.store.DeleteThread(ctx, id)
	if err != nil {
		return nil, lookupError(err, "failed to delete thread")
	}
	s.log.Info("thread deleted", zap.String("thread_id", id), zap.String("user_id", userID))
	return deleted, nil
}

func (s *ThreadService) get(ctx context.Context, id string) (*domain.Thread, error) {
	if !storage.ValidID(id) {
		return nil, apperror.NewNotFoundError(msgNotFound, nil)
	}
	t, err := s.store.GetThreadByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "failed to get thread")
	}
	return t, nil
}

func (s *ThreadService) ensureTopic(ctx context.Context, topicID string) error {
	if !storage.ValidID(topicID) {
		return apperror.NewNotFoundError(msgTopicNotFound, nil)
	}
	ok, err := s.store.TopicExists(ctx, topicID)
	if err != nil {
		return apperror.NewDatabaseError("failed to check topic", err)
	}
	if !ok {
		return apperror.NewNotFoundError(msgTopicNotFound, nil)
	}
	return nil
}

func lookupError(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperror.NewNotFoundError(msgNotFound, nil)
	}
	return apperror.NewDatabaseError(msg, err)
}
