package threads

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/domain"
	"github.com/user/forum-go/storage/memory"
)

const missingID = "5b0f6c0e-6f0a-4c39-9a55-0c8d1c7e2a41"

type countingViews struct{ seen map[string]int }

func (c *countingViews) Record(id string) { c.seen[id]++ }

type fixture struct {
	store *memory.Store
	svc   *ThreadService
	views *countingViews
	alice *domain.User
	bob   *domain.User
	topic *domain.Topic
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	alice, err := store.CreateUser(ctx, &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	bob, err := store.CreateUser(ctx, &domain.User{Username: "bob", Email: "bob@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	topic, err := store.CreateTopic(ctx, &domain.Topic{Slug: "stoicism", Title: "Stoicism", Tags: []string{}, Visibility: domain.VisibilityPublic, CreatedByID: alice.ID})
	require.NoError(t, err)

	views := &countingViews{seen: make(map[string]int)}
	return &fixture{
		store: store,
		svc:   NewThreadService(store, views, nil),
		views: views,
		alice: alice,
		bob:   bob,
		topic: topic,
	}
}

func (f *fixture) create(t *testing.T, title string) *domain.Thread {
	t.Helper()
	thread, err := f.svc.Create(context.Background(), f.alice.ID, CreateThreadRequest{Title: title, StarterMessage: "hello", TopicID: f.topic.ID})
	require.NoError(t, err)
	return thread
}

func TestCreateAutoSuffixesSlug(t *testing.T) {
	f := newFixture(t)

	first := f.create(t, "Intro")
	second := f.create(t, "intro")
	third := f.create(t, "INTRO!")

	assert.Equal(t, "intro", first.Slug)
	assert.Equal(t, "intro-1", second.Slug)
	assert.Equal(t, "intro-2", third.Slug)
}

func TestCreateDefaults(t *testing.T) {
	f := newFixture(t)

	thread := f.create(t, "Intro")

	assert.Equal(t, 0, thread.ViewsCount)
	assert.Equal(t, 0, thread.RepliesCount)
	assert.False(t, thread.Pinned)
	assert.Equal(t, domain.CategoryDiscussion, thread.Category)
	assert.Equal(t, f.alice.ID, thread.CreatedByID)
	assert.Equal(t, f.topic.ID, thread.TopicID)
}

func TestCreateMissingTopicWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, topicID := range []string{missingID, "not-a-uuid"} {
		_, err := f.svc.Create(ctx, f.alice.ID, CreateThreadRequest{Title: "Intro", StarterMessage: "x", TopicID: topicID})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
		assert.Equal(t, "Topic not found", err.Error())
	}

	taken, err := f.store.ThreadSlugExists(ctx, "intro")
	require.NoError(t, err)
	assert.False(t, taken)
}

// raceStore never sees a taken slug, like a request that lost the race
// between probing and inserting.
type raceStore struct{ *memory.Store }

func (raceStore) ThreadSlugExists(context.Context, string) (bool, error) { return false, nil }

func TestCreateLostSlugRaceIsConflict(t *testing.T) {
	f := newFixture(t)
	svc := NewThreadService(raceStore{f.store}, nil, nil)
	req := CreateThreadRequest{Title: "Intro", StarterMessage: "x", TopicID: f.topic.ID}

	_, err := svc.Create(context.Background(), f.alice.ID, req)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), f.alice.ID, req)

	assert.True(t, apperror.IsConflictError(err))
}

func TestFindByTopic(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, "First")
	second := f.create(t, "Second")

	list, err := f.svc.FindByTopic(context.Background(), f.topic.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	_, err = f.svc.FindByTopic(context.Background(), missingID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestFindOneRecordsView(t *testing.T) {
	f := newFixture(t)
	thread := f.create(t, "Intro")

	got, err := f.svc.FindOne(context.Background(), thread.ID)
	require.NoError(t, err)
	assert.Equal(t, thread.Slug, got.Slug)
	assert.Equal(t, 1, f.views.seen[thread.ID])

	_, err = f.svc.FindOne(context.Background(), missingID)
	assert.True(t, apperror.IsNotFound(err))
	assert.Len(t, f.views.seen, 1)

	require.NoError(t, f.svc.Exists(context.Background(), thread.ID))
	assert.Equal(t, 1, f.views.seen[thread.ID])
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	thread := f.create(t, "Intro")

	title := "Renamed"
	_, err := f.svc.Update(ctx, f.bob.ID, thread.ID, UpdateThreadRequest{Title: &title})
	require.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	assert.Equal(t, "You can only edit your own thread.", err.Error())

	_, err = f.svc.Update(ctx, f.alice.ID, missingID, UpdateThreadRequest{Title: &title})
	assert.True(t, apperror.IsNotFound(err))

	pinned := true
	question := domain.CategoryQuestion
	updated, err := f.svc.Update(ctx, f.alice.ID, thread.ID, UpdateThreadRequest{Title: &title, Pinned: &pinned, Category: &question})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "intro", updated.Slug)
	assert.True(t, updated.Pinned)
	assert.Equal(t, domain.CategoryQuestion, updated.Category)
	assert.Equal(t, "hello", updated.StarterMessage)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	thread := f.create(t, "Intro")

	_, err := f.svc.Delete(ctx, f.bob.ID, thread.ID)
	require.Error(t, err)
	assert.Equal(t, "You can only delete your own thread.", err.Error())

	deleted, err := f.svc.Delete(ctx, f.alice.ID, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intro", deleted.Title)

	_, err = f.svc.Delete(ctx, f.alice.ID, thread.ID)
	assert.True(t, apperror.IsNotFound(err))

	// The slug is free again.
	again := f.create(t, "Intro")
	assert.Equal(t, "intro", again.Slug)
}
