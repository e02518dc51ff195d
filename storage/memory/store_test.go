package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/forum-go/domain"
	"github.com/user/forum-go/storage"
)

// newTestStore creates a store with one user, one topic and one thread.
func newTestStore(t *testing.T) (*Store, *domain.User, *domain.Topic, *domain.Thread) {
	t.Helper()
	store := New()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	topic, err := store.CreateTopic(ctx, &domain.Topic{Slug: "stoicism", Title: "Stoicism", Tags: []string{"philosophy"}, Visibility: domain.VisibilityPublic, CreatedByID: user.ID})
	require.NoError(t, err)
	thread, err := store.CreateThread(ctx, &domain.Thread{Slug: "intro", Title: "Intro", TopicID: topic.ID, CreatedByID: user.ID, Category: domain.CategoryDiscussion})
	require.NoError(t, err)
	return store, user, topic, thread
}

func TestStore_UserEmailIsUniqueCaseInsensitive(t *testing.T) {
	store, _, _, _ := newTestStore(t)

	_, err := store.CreateUser(context.Background(), &domain.User{Username: "other", Email: "ALICE@example.com"})

	assert.True(t, storage.IsUniqueViolation(err, storage.ConstraintUserEmail))
}

func TestStore_GetMissingReturnsErrNotFound(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, err := store.GetUserByID(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetTopicByID(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetThreadByID(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetContributionByID(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.TopicOwnerID(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_TopicSlugUnique(t *testing.T) {
	store, user, topic, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateTopic(ctx, &domain.Topic{Slug: "stoicism", Title: "STOICISM", CreatedByID: user.ID})
	assert.True(t, storage.IsUniqueViolation(err, storage.ConstraintTopicSlug))

	other, err := store.CreateTopic(ctx, &domain.Topic{Slug: "epicurus", Title: "Epicurus", CreatedByID: user.ID})
	require.NoError(t, err)

	taken := "stoicism"
	_, err = store.UpdateTopic(ctx, other.ID, domain.TopicPatch{Slug: &taken})
	assert.True(t, storage.IsUniqueViolation(err, storage.ConstraintTopicSlug))

	// Re-using its own slug is fine.
	updated, err := store.UpdateTopic(ctx, topic.ID, domain.TopicPatch{Slug: &taken})
	require.NoError(t, err)
	assert.Equal(t, "stoicism", updated.Slug)
}

func TestStore_ReturnedValuesAreCopies(t *testing.T) {
	store, _, topic, _ := newTestStore(t)
	ctx := context.Background()

	topic.Tags[0] = "mutated"
	topic.Title = "mutated"

	fresh, err := store.GetTopicByID(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stoicism", fresh.Title)
	assert.Equal(t, []string{"philosophy"}, fresh.Tags)
}

func TestStore_ListsAreOrdered(t *testing.T) {
	store, user, topic, first := newTestStore(t)
	ctx := context.Background()
	// Same timestamp for everything that follows; insertion order breaks the tie.
	fixed := time.Now().UTC().Add(time.Hour)
	store.now = func() time.Time { return fixed }

	second, err := store.CreateThread(ctx, &domain.Thread{Slug: "intro-1", Title: "Intro", TopicID: topic.ID, CreatedByID: user.ID})
	require.NoError(t, err)
	third, err := store.CreateThread(ctx, &domain.Thread{Slug: "intro-2", Title: "Intro", TopicID: topic.ID, CreatedByID: user.ID})
	require.NoError(t, err)

	threads, err := store.ListThreadsByTopic(ctx, topic.ID)
	require.NoError(t, err)
	require.Len(t, threads, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{threads[0].ID, threads[1].ID, threads[2].ID})

	a, err := store.CreateContribution(ctx, &domain.Contribution{Content: "a", ThreadID: first.ID, CreatedByID: user.ID})
	require.NoError(t, err)
	b, err := store.CreateContribution(ctx, &domain.Contribution{Content: "b", ThreadID: first.ID, CreatedByID: user.ID})
	require.NoError(t, err)

	list, err := store.ListContributionsByThread(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)
	require.NotNil(t, list[0].Author)
	assert.Equal(t, "alice", list[0].Author.Username)
}

func TestStore_ContributionsMaintainRepliesCount(t *testing.T) {
	store, user, _, thread := newTestStore(t)
	ctx := context.Background()

	root, err := store.CreateContribution(ctx, &domain.Contribution{Content: "root", ThreadID: thread.ID, CreatedByID: user.ID})
	require.NoError(t, err)
	reply, err := store.CreateContribution(ctx, &domain.Contribution{Content: "reply", ThreadID: thread.ID, CreatedByID: user.ID, ParentContributionID: &root.ID})
	require.NoError(t, err)
	_, err = store.CreateContribution(ctx, &domain.Contribution{Content: "nested", ThreadID: thread.ID, CreatedByID: user.ID, ParentContributionID: &reply.ID})
	require.NoError(t, err)

	got, err := store.GetThreadByID(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.RepliesCount)

	_, err = store.DeleteContribution(ctx, root.ID)
	require.NoError(t, err)

	got, err = store.GetThreadByID(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.RepliesCount)
	list, err := store.ListContributionsByThread(ctx, thread.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_CreateContributionRequiresThreadAndParent(t *testing.T) {
	store, user, _, thread := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateContribution(ctx, &domain.Contribution{Content: "x", ThreadID: "missing", CreatedByID: user.ID})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	missing := "missing"
	_, err = store.CreateContribution(ctx, &domain.Contribution{Content: "x", ThreadID: thread.ID, CreatedByID: user.ID, ParentContributionID: &missing})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_DeleteTopicCascades(t *testing.T) {
	store, user, topic, thread := newTestStore(t)
	ctx := context.Background()

	c, err := store.CreateContribution(ctx, &domain.Contribution{Content: "x", ThreadID: thread.ID, CreatedByID: user.ID})
	require.NoError(t, err)

	title, err := store.DeleteTopic(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stoicism", title)

	_, err = store.GetThreadByID(ctx, thread.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetContributionByID(ctx, c.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	exists, err := store.ThreadSlugExists(ctx, "intro")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.DeleteTopic(ctx, topic.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_IncrementThreadViews(t *testing.T) {
	store, _, _, thread := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.IncrementThreadViews(ctx, map[string]int{thread.ID: 3, "gone": 2}))
	require.NoError(t, store.IncrementThreadViews(ctx, map[string]int{thread.ID: 1}))

	got, err := store.GetThreadByID(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.ViewsCount)
}
