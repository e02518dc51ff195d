// Package contributions implements posts and replies inside threads. Replies
// nest to any depth and every change is published to the thread's followers.
package contributions

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/domain"
	"github.com/user/forum-go/events"
	"github.com/user/forum-go/logger"
	"github.com/user/forum-go/ownership"
	"github.com/user/forum-go/storage"
)

const (
	msgNotFound       = "Contribution not found"
	msgThreadNotFound = "Thread not found"
	msgParentNotFound = "Parent contribution not found"
	msgParentThread   = "Parent contribution belongs to a different thread"
)

// ContributionStore is the part of the storage layer ContributionService needs.
type ContributionStore interface {
	ThreadExists(ctx context.Context, threadID string) (bool, error)
	CreateContribution(ctx context.Context, c *domain.Contribution) (*domain.Contribution, error)
	GetContributionByID(ctx context.Context, id string) (*domain.Contribution, error)
	ListContributionsByThread(ctx context.Context, threadID string) ([]*domain.Contribution, error)
	UpdateContribution(ctx context.Context, id string, patch domain.ContributionPatch) (*domain.Contribution, error)
	DeleteContribution(ctx context.Context, id string) (*domain.Contribution, error)
	ContributionOwnerID(ctx context.Context, id string) (string, error)
}

// Publisher delivers an event to the followers of a thread.
type Publisher interface {
	Publish(threadID string, ev events.Event) int
}

type noPublisher struct{}

func (noPublisher) Publish(string, events.Event) int { return 0 }

// ContributionService holds the contribution rules.
type ContributionService struct {
	store     ContributionStore
	publisher Publisher
	guard     *ownership.Guard
	log       *zap.Logger
}

// NewContributionService creates a new ContributionService. publisher may be nil.
func NewContributionService(store ContributionStore, publisher Publisher, log *zap.Logger) *ContributionService {
	if publisher == nil {
		publisher = noPublisher{}
	}
	return &ContributionService{
		store:     store,
		publisher: publisher,
		guard: ownership.NewGuard("contribution", ownership.LookupFunc(store.ContributionOwnerID),
			ownership.WithForbiddenMessage(func(a ownership.Action) string {
				return "You can only " + string(a) + " your own contribution."
			}),
		),
		log: logger.OrNop(log),
	}
}

// Create posts into an existing thread. A reply's parent must exist and live
// in the same thread. Nothing is written when a check fails.
func (s *ContributionService) Create(ctx context.Context, userID string, req CreateContributionRequest) (*domain.Contribution, error) {
	if !storage.ValidID(req.ThreadID) {
		return nil, apperror.NewNotFoundError(msgThreadNotFound, nil)
	}
	ok, err := s.store.ThreadExists(ctx, req.ThreadID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to check thread", err)
	}
	if !ok {
		return nil, apperror.NewNotFoundError(msgThreadNotFound, nil)
	}

	if req.ParentContributionID != nil {
		if err := s.checkParent(ctx, *req.ParentContributionID, req.ThreadID); err != nil {
			return nil, err
		}
	}

	created, err := s.store.CreateContribution(ctx, &domain.Contribution{
		Content:              req.Content,
		ThreadID:             req.ThreadID,
		CreatedByID:          userID,
		ParentContributionID: req.ParentContributionID,
	})
	if err != nil {
		// The thread or parent vanished after the checks.
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperror.NewNotFoundError(msgThreadNotFound, err)
		}
		return nil, apperror.NewDatabaseError("failed to create contribution", err)
	}

	s.log.Info("contribution created", zap.String("contribution_id", created.ID), zap.String("thread_id", created.ThreadID))
	s.publish(events.ContributionCreated, created)
	return created, nil
}

// FindByThread returns the thread's top-level contributions with their reply
// trees, every level oldest first. An unknown thread has no contributions.
func (s *ContributionService) FindByThread(ctx context.Context, threadID string) ([]*domain.Contribution, error) {
	if !storage.ValidID(threadID) {
		return []*domain.Contribution{}, nil
	}
	flat, err := s.store.ListContributionsByThread(ctx, threadID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list contributions", err)
	}
	return domain.BuildReplyTree(flat), nil
}

// FindOne returns a single contribution with its author.
func (s *ContributionService) FindOne(ctx context.Context, id string) (*domain.Contribution, error) {
	if !storage.ValidID(id) {
		return nil, apperror.NewNotFoundError(msgNotFound, nil)
	}
	c, err := s.store.GetContributionByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "failed to get contribution")
	}
	return c, nil
}

// IsOwner reports whether userID wrote the contribution.
func (s *ContributionService) IsOwner(ctx context.Context, userID, id string) (bool, error) {
	return s.guard.IsOwner(ctx, userID, id)
}

// Update changes the content of a contribution owned by userID.
func (s *ContributionService) Update(ctx context.Context, userID, id string, req UpdateContributionRequest) (*domain.Contribution, error) {
	if err := s.guard.Authorize(ctx, userID, id, ownership.ActionEdit); err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateContribution(ctx, id, domain.ContributionPatch{Content: req.Content})
	if err != nil {
		return nil, lookupError(err, "failed to update contribution")
	}
	s.publish(events.ContributionUpdated, updated)
	return updated, nil
}

// Delete removes a contribution owned by userID together with all its replies.
func (s *ContributionService) Delete(ctx context.Context, userID, id string) (*domain.Contribution, error) {
	if err := s.guard.Authorize(ctx, userID, id, ownership.ActionDelete); err != nil {
		return nil, err
	}
	deleted, err := s.store.DeleteContribution(ctx, id)
	if err != nil {
		return nil, lookupError(err, "failed to delete contribution")
	}
	s.log.Info("contribution deleted", zap.String("contribution_id", id), zap.String("user_id", userID))
	s.publish(events.ContributionDeleted, deleted)
	return deleted, nil
}

func (s *ContributionService) checkParent(ctx context.Context, parentID, threadID string) error {
	if !storage.ValidID(parentID) {
		return apperror.NewNotFoundError(msgParentNotFound, nil)
	}
	parent, err := s.store.GetContributionByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperror.NewNotFoundError(msgParentNotFound, nil)
		}
		return apperror.NewDatabaseError("failed to get parent contribution", err)
	}
	if parent.ThreadID != threadID {
		return apperror.NewBadRequestError(msgParentThread, nil)
	}
	return nil
}

func (s *ContributionService) publish(name string, c *domain.Contribution) {
	data, err := json.Marshal(c)
	if err != nil {
		s.log.Warn("failed to encode contribution event", zap.String("event", name), zap.Error(err))
		return
	}
	s.publisher.Publish(c.ThreadID, events.Event{Name: name, Data: data})
}

func lookupError(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperror.NewNotFoundError(msgNotFound, nil)
	}
	return apperror.NewDatabaseError(msg, err)
}
