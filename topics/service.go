// Package topics implements the topic resource: creation with unique slugs,
// listing, lookup, and owner-only update and deletion.
package topics

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
	msgNotFound = "Topic not found"
	msgConflict = "A topic with the same title already exists."
	msgNoSlug   = "title must contain at least one letter or digit"
)

// TopicStore is the part of the storage layer TopicService needs.
type TopicStore interface {
	CreateTopic(ctx context.Context, t *domain.Topic) (*domain.Topic, error)
	GetTopicByID(ctx context.Context, id string) (*domain.Topic, error)
	GetTopicBySlug(ctx context.Context, slug string) (*domain.Topic, error)
	ListTopics(ctx context.Context) ([]*domain.Topic, error)
	ListTopicsByUser(ctx context.Context, userID string) ([]*domain.Topic, error)
	UpdateTopic(ctx context.Context, id string, patch domain.TopicPatch) (*domain.Topic, error)
	DeleteTopic(ctx context.Context, id string) (string, error)
	TopicOwnerID(ctx context.Context, id string) (string, error)
}

// TopicService holds the topic rules. Topic slugs never get a numeric suffix:
// a colliding title is a conflict.
type TopicService struct {
	store TopicStore
	guard *ownership.Guard
	log   *zap.Logger
}

// NewTopicService creates a new TopicService.
func NewTopicService(store TopicStore, log *zap.Logger) *TopicService {
	return &TopicService{
		store: store,
		guard: ownership.NewGuard("topic", ownership.LookupFunc(store.TopicOwnerID)),
		log:   logger.OrNop(log),
	}
}

// Create derives the slug from the title and inserts the topic owned by userID.
func (s *TopicService) Create(ctx context.Context, userID string, req CreateTopicRequest) (*domain.Topic, error) {
	title := strings.TrimSpace(req.Title)
	topicSlug, err := slugFor(title)
	if err != nil {
		return nil, err
	}

	if err := s.ensureSlugFree(ctx, topicSlug, ""); err != nil {
		return nil, err
	}

	visibility := domain.VisibilityPublic
	if req.Visibility != nil {
		visibility = *req.Visibility
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	created, err := s.store.CreateTopic(ctx, &domain.Topic{
		Slug:        topicSlug,
		Title:       title,
		Description: req.Description,
		Tags:        tags,
		Visibility:  visibility,
		CreatedByID: userID,
	})
	if err != nil {
		// A concurrent create can pass the pre-check; the unique constraint decides.
		if storage.IsUniqueViolation(err, storage.ConstraintTopicSlug) {
			return nil, apperror.NewConflictError(msgConflict, nil)
		}
		return nil, apperror.NewDatabaseError("failed to create topic", err)
	}

	s.log.Info("topic created", zap.String("topic_id", created.ID), zap.String("slug", created.Slug), zap.String("user_id", userID))
	return created, nil
}

// FindAll returns every topic, newest first.
func (s *TopicService) FindAll(ctx context.Context) ([]*domain.Topic, error) {
	list, err := s.store.ListTopics(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list topics", err)
	}
	return list, nil
}

// FindAllByUser returns the topics created by userID, newest first.
func (s *TopicService) FindAllByUser(ctx context.Context, userID string) ([]*domain.Topic, error) {
	list, err := s.store.ListTopicsByUser(ctx, userID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list topics", err)
	}
	return list, nil
}

// FindOne returns the topic with the given id.
func (s *TopicService) FindOne(ctx context.Context, id string) (*domain.Topic, error) {
	if !storage.ValidID(id) {
		return nil, apperror.NewNotFoundError(msgNotFound, nil)
	}
	t, err := s.store.GetTopicByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "failed to get topic")
	}
	return t, nil
}

// IsOwner reports whether userID created the topic.
func (s *TopicService) IsOwner(ctx context.Context, userID, id string) (bool, error) {
	return s.guard.IsOwner(ctx, userID, id)
}

// Update applies a partial update. Only the creator may update a topic, and a
// new title re-derives the slug, which must not belong to another topic.
func (s *TopicService) Update(ctx context.Context, userID, id string, req UpdateTopicRequest) (*domain.Topic, error) {
	if err := s.guard.Authorize(ctx, userID, id, ownership.ActionEdit); err != nil {
		return nil, err
	}

	patch := domain.TopicPatch{
		Description: req.Description,
		Tags:        req.Tags,
		Visibility:  req.Visibility,
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		topicSlug, err := slugFor(title)
		if err != nil {
			return nil, err
		}
		if err := s.ensureSlugFree(ctx, topicSlug, id); err != nil {
			return nil, err
		}
		patch.Title = &title
		patch.Slug = &topicSlug
	}

	updated, err := s.store.UpdateTopic(ctx, id, patch)
	if err != nil {
		if storage.IsUniqueViolation(err, storage.ConstraintTopicSlug) {
			return nil, apperror.NewConflictError(msgConflict, nil)
		}
		return nil, s.lookupError(err, "failed to update topic")
	}
	return updated, nil
}

// Delete removes the topic, with its threads and contributions, and returns its title.
func (s *TopicService) Delete(ctx context.Context, userID, id string) (string, error) {
	if err := s.guard.Authorize(ctx, userID, id, ownership.ActionDelete); err != nil {
		return "", err
	}
	title, err := s.store.DeleteTopic(ctx, id)
	if err != nil {
		return "", s.lookupError(err, "failed to delete topic")
	}
	s.log.Info("topic deleted", zap.String("topic_id", id), zap.String("user_id", userID))
	return title, nil
}

// ensureSlugFree fails with Conflict when a topic other than selfID owns topicSlug.
func (s *TopicService) ensureSlugFree(ctx context.Context, topicSlug, selfID string) error {
	existing, err := s.store.GetTopicBySlug(ctx, topicSlug)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil
	case err != nil:
		return apperror.NewDatabaseError("failed to check topic slug", err)
	case existing.ID != selfID:
		return apperror.NewConflictError(msgConflict, nil)
	}
	return nil
}

func (s *TopicService) lookupError(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperror.NewNotFoundError(msgNotFound, nil)
	}
	return apperror.NewDatabaseError(msg, err)
}

func slugFor(title string) (string, error) {
	sl := slug.Make(title)
	if sl == "" {
		return "", apperror.NewValidationError("validation failed", []apperror.FieldError{
			{Field: "title", Rule: "slug", Message: msgNoSlug},
		})
	}
	return sl, nil
}
