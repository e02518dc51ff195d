// Package seed loads a small demo data set through the regular services, so
// the demo rows obey the same slug, hashing and ownership rules as real ones.
// Running it twice reuses what the first run created.
package seed

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/auth"
	"github.com/user/forum-go/contributions"
	"github.com/user/forum-go/domain"
	"github.com/user/forum-go/logger"
	"github.com/user/forum-go/slug"
	"github.com/user/forum-go/storage"
	"github.com/user/forum-go/threads"
	"github.com/user/forum-go/topics"
)

// Demo account and content.
const (
	DemoEmail    = "demo@example.com"
	DemoUsername = "DemoUser"
	DemoPassword = "demo-password"

	topicTitle       = "Artificial Intelligence"
	topicDescription = "Discussions and contributions around AI."
	threadTitle      = "The Future of AI"
	threadMessage    = "Where do you think AI will be in 10 years?"
	firstPost        = "AI will be integrated in every aspect of our life."
)

// Store is the read access the seeder needs to find earlier demo rows.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetTopicBySlug(ctx context.Context, slug string) (*domain.Topic, error)
	ListThreadsByTopic(ctx context.Context, topicID string) ([]*domain.Thread, error)
}

// Result lists the demo rows and whether this run created them.
type Result struct {
	UserID         string
	TopicID        string
	ThreadID       string
	ContributionID string
	Created        bool
}

// Seeder creates the demo data set.
type Seeder struct {
	store         Store
	auth          *auth.AuthService
	topics        *topics.TopicService
	threads       *threads.ThreadService
	contributions *contributions.ContributionService
	log           *zap.Logger
}

// New creates a Seeder.
func New(store Store, authSvc *auth.AuthService, topicSvc *topics.TopicService, threadSvc *threads.ThreadService, contributionSvc *contributions.ContributionService, log *zap.Logger) *Seeder {
	return &Seeder{
		store:         store,
		auth:          authSvc,
		topics:        topicSvc,
		threads:       threadSvc,
		contributions: contributionSvc,
		log:           logger.OrNop(log),
	}
}

// Run creates whatever part of the demo data set is missing.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	user, err := s.demoUser(ctx, res)
	if err != nil {
		return nil, err
	}
	res.UserID = user.ID

	topic, err := s.store.GetTopicBySlug(ctx, slug.Make(topicTitle))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		topic, err = s.topics.Create(ctx, user.ID, topics.CreateTopicRequest{
			Title:       topicTitle,
			Description: topicDescription,
			Tags:        []string{"ai"},
		})
		if err != nil {
			return nil, err
		}
		res.Created = true
	case err != nil:
		return nil, apperror.NewDatabaseError("failed to look up demo topic", err)
	}
	res.TopicID = topic.ID

	existing, err := s.store.ListThreadsByTopic(ctx, topic.ID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to look up demo thread", err)
	}
	for _, t := range existing {
		if t.Title == threadTitle {
			res.ThreadID = t.ID
			s.log.Info("demo data already present", zap.String("thread_id", t.ID))
			return res, nil
		}
	}

	thread, err := s.threads.Create(ctx, user.ID, threads.CreateThreadRequest{
		Title:          threadTitle,
		StarterMessage: threadMessage,
		TopicID:        topic.ID,
	})
	if err != nil {
		return nil, err
	}
	res.ThreadID = thread.ID

	post, err := s.contributions.Create(ctx, user.ID, contributions.CreateContributionRequest{
		Content:  firstPost,
		ThreadID: thread.ID,
	})
	if err != nil {
		return nil, err
	}
	res.ContributionID = post.ID
	res.Created = true

	s.log.Info("demo data seeded",
		zap.String("user_id", res.UserID),
		zap.String("topic_id", res.TopicID),
		zap.String("thread_id", res.ThreadID),
	)
	return res, nil
}

func (s *Seeder) demoUser(ctx context.Context, res *Result) (*domain.User, error) {
	user, err := s.store.GetUserByEmail(ctx, DemoEmail)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.NewDatabaseError("failed to look up demo user", err)
	}

	if _, err := s.auth.Register(ctx, auth.RegisterRequest{Username: DemoUsername, Email: DemoEmail, Password: DemoPassword}); err != nil {
		return nil, err
	}
	res.Created = true

	user, err = s.store.GetUserByEmail(ctx, DemoEmail)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to load demo user", err)
	}
	return user, nil
}
