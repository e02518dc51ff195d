// Package memory implements storage.Store in process memory. It backs the
// test suite and STORAGE_DRIVER=memory, and enforces the same uniqueness and
// cascade rules as the SQL schema.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/forum-go/domain"
	"github.com/user/forum-go/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps every entity in maps guarded by one RWMutex. Values handed out
// are copies, so callers can never mutate stored state.
type Store struct {
	mu            sync.RWMutex
	users         map[string]*domain.User
	usersByEmail  map[string]string // lower(email) -> user id
	topics        map[string]*domain.Topic
	topicSlugs    map[string]string // slug -> topic id
	threads       map[string]*domain.Thread
	threadSlugs   map[string]string // slug -> thread id
	contributions map[string]*domain.Contribution
	seq           map[string]uint64 // insertion order, breaks created_at ties
	nextSeq       uint64
	now           func() time.Time
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:         make(map[string]*domain.User),
		usersByEmail:  make(map[string]string),
		topics:        make(map[string]*domain.Topic),
		topicSlugs:    make(map[string]string),
		threads:       make(map[string]*domain.Thread),
		threadSlugs:   make(map[string]string),
		contributions: make(map[string]*domain.Contribution),
		seq:           make(map[string]uint64),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

func (s *Store) track(id string) {
	s.nextSeq++
	s.seq[id] = s.nextSeq
}

// before orders by creation time, then insertion order.
func (s *Store) before(aID string, a time.Time, bID string, b time.Time) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return s.seq[aID] < s.seq[bID]
}

// === Users ===

func (s *Store) CreateUser(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, taken := s.usersByEmail[key]; taken {
		return nil, &storage.UniqueViolationError{Constraint: storage.ConstraintUserEmail}
	}

	stored := *u
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt
	s.users[stored.ID] = &stored
	s.usersByEmail[key] = stored.ID
	s.track(stored.ID)

	out := stored
	return &out, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *s.users[id]
	return &out, nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *Store) ListUsers(_ context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return s.before(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt)
	})
	return out, nil
}

// === Topics ===

func copyTopic(t *domain.Topic) *domain.Topic {
	c := *t
	c.Tags = append([]string{}, t.Tags...)
	return &c
}

func (s *Store) CreateTopic(_ context.Context, t *domain.Topic) (*domain.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.topicSlugs[t.Slug]; taken {
		return nil, &storage.UniqueViolationError{Constraint: storage.ConstraintTopicSlug}
	}
	if _, ok := s.users[t.CreatedByID]; !ok {
		return nil, storage.ErrNotFound
	}

	stored := copyTopic(t)
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt
	s.topics[stored.ID] = stored
	s.topicSlugs[stored.Slug] = stored.ID
	s.track(stored.ID)

	return copyTopic(stored), nil
}

func (s *Store) GetTopicByID(_ context.Context, id string) (*domain.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.topics[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyTopic(t), nil
}

func (s *Store) GetTopicBySlug(_ context.Context, slug string) (*domain.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.topicSlugs[slug]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyTopic(s.topics[id]), nil
}

func (s *Store) ListTopics(_ context.Context) ([]*domain.Topic, error) {
	return s.listTopics(func(*domain.Topic) bool { return true }), nil
}

func (s *Store) ListTopicsByUser(_ context.Context, userID string) ([]*domain.Topic, error) {
	return s.listTopics(func(t *domain.Topic) bool { return t.CreatedByID == userID }), nil
}

// listTopics returns matching topics newest first.
func (s *Store) listTopics(keep func(*domain.Topic) bool) []*domain.Topic {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Topic, 0)
	for _, t := range s.topics {
		if keep(t) {
			out = append(out, copyTopic(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.before(out[j].ID, out[j].CreatedAt, out[i].ID, out[i].CreatedAt)
	})
	return out
}

func (s *Store) UpdateTopic(_ context.Context, id string, patch domain.TopicPatch) (*domain.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.topics[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if patch.Slug != nil && *patch.Slug != t.Slug {
		if owner, taken := s.topicSlugs[*patch.Slug]; taken && owner != id {
			return nil, &storage.UniqueViolationError{Constraint: storage.ConstraintTopicSlug}
		}
		delete(s.topicSlugs, t.Slug)
		t.Slug = *patch.Slug
		s.topicSlugs[t.Slug] = id
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Tags != nil {
		t.Tags = append([]string{}, (*patch.Tags)...)
	}
	if patch.Visibility != nil {
		t.Visibility = *patch.Visibility
	}
	t.UpdatedAt = s.now()
	return copyTopic(t), nil
}

func (s *Store) DeleteTopic(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.topics[id]
	if !ok {
		return "", storage.ErrNotFound
	}
	for threadID, th := range s.threads {
		if th.TopicID == id {
			s.deleteThreadLocked(threadID)
		}
	}
	delete(s.topics, id)
	delete(s.topicSlugs, t.Slug)
	delete(s.seq, id)
	return t.Title, nil
}

func (s *Store) TopicOwnerID(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.topics[id]
	if !ok {
		return "", storage.ErrNotFound
	}
	return t.CreatedByID, nil
}

// === Threads ===

func (s *Store) TopicExists(_ context.Context, topicID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.topics[topicID]
	return ok, nil
}

func (s *Store) ThreadSlugExists(_ context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.threadSlugs[slug]
	return ok, nil
}

func (s *Store) CreateThread(_ context.Context, t *domain.Thread) (*domain.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.threadSlugs[t.Slug]; taken {
		return nil, &storage.UniqueViolationError{Constraint: storage.ConstraintThreadSlug}
	}
	if _, ok := s.topics[t.TopicID]; !ok {
		return nil, storage.ErrNotFound
	}
	if _, ok := s.users[t.CreatedByID]; !ok {
		return nil, storage.ErrNotFound
	}

	stored := *t
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt
	s.threads[stored.ID] = &stored
	s.threadSlugs[stored.Slug] = stored.ID
	s.track(stored.ID)

	out := stored
	return &out, nil
}

func (s *Store) GetThreadByID(_ context.Context, id string) (*domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.threads[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *t
	return &out, nil
}

func (s *Store) ListThreadsByTopic(_ context.Context, topicID string) ([]*domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Thread, 0)
	for _, t := range s.threads {
		if t.TopicID == topicID {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.before(out[j].ID, out[j].CreatedAt, out[i].ID, out[i].CreatedAt)
	})
	return out, nil
}

func (s *Store) UpdateThread(_ context.Context, id string, patch domain.ThreadPatch) (*domain.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.StarterMessage != nil {
		t.StarterMessage = *patch.StarterMessage
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.Pinned != nil {
		t.Pinned = *patch.Pinned
	}
	t.UpdatedAt = s.now()
	out := *t
	return &out, nil
}

func (s *Store) DeleteThread(_ context.Context, id string) (*domain.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *t
	s.deleteThreadLocked(id)
	return &out, nil
}

// deleteThreadLocked removes a thread and its contributions. Caller holds mu.
func (s *Store) deleteThreadLocked(id string) {
	t := s.threads[id]
	for cid, c := range s.contributions {
		if c.ThreadID == id {
			delete(s.contributions, cid)
			delete(s.seq, cid)
		}
	}
	delete(s.threadSlugs, t.Slug)
	delete(s.threads, id)
	delete(s.seq, id)
}

func (s *Store) ThreadOwnerID(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.threads[id]
	if !ok {
		return "", storage.ErrNotFound
	}
	return t.CreatedByID, nil
}

func (s *Store) IncrementThreadViews(_ context.Context, deltas map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, n := range deltas {
		if t, ok := s.threads[id]; ok {
			t.ViewsCount += n
		}
	}
	return nil
}

// === Contributions ===

func (s *Store) ThreadExists(_ context.Context, threadID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.threads[threadID]
	return ok, nil
}

// contributionView copies c and attaches its author. Caller holds mu.
func (s *Store) contributionView(c *domain.Contribution) *domain.Contribution {
	out := *c
	out.Replies = nil
	if c.ParentContributionID != nil {
		p := *c.ParentContributionID
		out.ParentContributionID = &p
	}
	if u, ok := s.users[c.CreatedByID]; ok {
		out.Author = &domain.Author{ID: u.ID, Username: u.Username}
	}
	return &out
}

func (s *Store) CreateContribution(_ context.Context, c *domain.Contribution) (*domain.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread, ok := s.threads[c.ThreadID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if _, ok := s.users[c.CreatedByID]; !ok {
		return nil, storage.ErrNotFound
	}
	if c.ParentContributionID != nil {
		if _, ok := s.contributions[*c.ParentContributionID]; !ok {
			return nil, storage.ErrNotFound
		}
	}

	stored := *c
	stored.Author = nil
	stored.Replies = nil
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt
	s.contributions[stored.ID] = &stored
	s.track(stored.ID)
	thread.RepliesCount++

	return s.contributionView(&stored), nil
}

func (s *Store) GetContributionByID(_ context.Context, id string) (*domain.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contributions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.contributionView(c), nil
}

func (s *Store) ListContributionsByThread(_ context.Context, threadID string) ([]*domain.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Contribution, 0)
	for _, c := range s.contributions {
		if c.ThreadID == threadID {
			out = append(out, s.contributionView(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.before(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) UpdateContribution(_ context.Context, id string, patch domain.ContributionPatch) (*domain.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contributions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if patch.Content != nil {
		c.Content = *patch.Content
	}
	c.UpdatedAt = s.now()
	return s.contributionView(c), nil
}

func (s *Store) DeleteContribution(_ context.Context, id string) (*domain.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contributions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := s.contributionView(c)

	// Replies cascade, to any depth.
	removed := 0
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for cid, child := range s.contributions {
			if child.ParentContributionID != nil && *child.ParentContributionID == cur {
				queue = append(queue, cid)
			}
		}
		delete(s.contributions, cur)
		delete(s.seq, cur)
		removed++
	}

	if t, ok := s.threads[c.ThreadID]; ok {
		t.RepliesCount -= removed
		if t.RepliesCount < 0 {
			t.RepliesCount = 0
		}
	}
	return out, nil
}

func (s *Store) ContributionOwnerID(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contributions[id]
	if !ok {
		return "", storage.ErrNotFound
	}
	return c.CreatedByID, nil
}
