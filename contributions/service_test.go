package contributions

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/domain"
	"github.com/user/forum-go/events"
	"github.com/user/forum-go/storage/memory"
)

const missingID = "5b0f6c0e-6f0a-4c39-9a55-0c8d1c7e2a41"

type recordedEvent struct {
	threadID string
	ev       events.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(threadID string, ev events.Event) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{threadID: threadID, ev: ev})
	return 1
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.ev.Name)
	}
	return out
}

type fixture struct {
	store     *memory.Store
	svc       *ContributionService
	publisher *recordingPublisher
	alice     *domain.User
	bob       *domain.User
	thread    *domain.Thread
	other     *domain.Thread
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
	thread, err := store.CreateThread(ctx, &domain.Thread{Slug: "intro", Title: "Intro", TopicID: topic.ID, CreatedByID: alice.ID, Category: domain.CategoryDiscussion})
	require.NoError(t, err)
	other, err := store.CreateThread(ctx, &domain.Thread{Slug: "other", Title: "Other", TopicID: topic.ID, CreatedByID: alice.ID, Category: domain.CategoryDiscussion})
	require.NoError(t, err)

	pub := &recordingPublisher{}
	return &fixture{
		store:     store,
		svc:       NewContributionService(store, pub, nil),
		publisher: pub,
		alice:     alice,
		bob:       bob,
		thread:    thread,
		other:     other,
	}
}

func (f *fixture) post(t *testing.T, user *domain.User, content string, parent *domain.Contribution) *domain.Contribution {
	t.Helper()
	req := CreateContributionRequest{Content: content, ThreadID: f.thread.ID}
	if parent != nil {
		req.ParentContributionID = &parent.ID
	}
	c, err := f.svc.Create(context.Background(), user.ID, req)
	require.NoError(t, err)
	return c
}

func TestCreateTopLevel(t *testing.T) {
	f := newFixture(t)

	c := f.post(t, f.alice, "hello", nil)

	assert.Nil(t, c.ParentContributionID)
	assert.Equal(t, f.alice.ID, c.CreatedByID)
	require.NotNil(t, c.Author)
	assert.Equal(t, "alice", c.Author.Username)

	require.Len(t, f.publisher.events, 1)
	got := f.publisher.events[0]
	assert.Equal(t, f.thread.ID, got.threadID)
	assert.Equal(t, events.ContributionCreated, got.ev.Name)
	var decoded domain.Contribution
	require.NoError(t, json.Unmarshal(got.ev.Data, &decoded))
	assert.Equal(t, c.ID, decoded.ID)
}

func TestCreateMissingThreadWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.alice.ID, CreateContributionRequest{Content: "x", ThreadID: missingID})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, "Thread not found", err.Error())

	list, err := f.store.ListContributionsByThread(ctx, missingID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.publisher.events)
}

func TestCreateParentChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	missing := missingID
	_, err := f.svc.Create(ctx, f.alice.ID, CreateContributionRequest{Content: "x", ThreadID: f.thread.ID, ParentContributionID: &missing})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, "Parent contribution not found", err.Error())

	elsewhere, err := f.svc.Create(ctx, f.alice.ID, CreateContributionRequest{Content: "x", ThreadID: f.other.ID})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.alice.ID, CreateContributionRequest{Content: "x", ThreadID: f.thread.ID, ParentContributionID: &elsewhere.ID})
	assert.True(t, apperror.IsBadRequest(err))
}

func TestFindByThreadBuildsTree(t *testing.T) {
	f := newFixture(t)
	root := f.post(t, f.alice, "root", nil)
	second := f.post(t, f.bob, "second root", nil)
	reply := f.post(t, f.bob, "reply", root)
	nested := f.post(t, f.alice, "nested", reply)
	laterReply := f.post(t, f.alice, "later reply", root)

	tree, err := f.svc.FindByThread(context.Background(), f.thread.ID)

	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, root.ID, tree[0].ID)
	assert.Equal(t, second.ID, tree[1].ID)
	require.Len(t, tree[0].Replies, 2)
	assert.Equal(t, reply.ID, tree[0].Replies[0].ID)
	assert.Equal(t, laterReply.ID, tree[0].Replies[1].ID)
	require.Len(t, tree[0].Replies[0].Replies, 1)
	assert.Equal(t, nested.ID, tree[0].Replies[0].Replies[0].ID)
	assert.Equal(t, "bob", tree[0].Replies[0].Author.Username)

	thread, err := f.store.GetThreadByID(context.Background(), f.thread.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, thread.RepliesCount)
}

func TestFindByThreadUnknownThreadIsEmpty(t *testing.T) {
	f := newFixture(t)

	for _, id := range []string{missingID, "not-a-uuid"} {
		tree, err := f.svc.FindByThread(context.Background(), id)
		require.NoError(t, err)
		assert.NotNil(t, tree)
		assert.Empty(t, tree)
	}
}

func TestFindOne(t *testing.T) {
	f := newFixture(t)
	c := f.post(t, f.alice, "hello", nil)

	got, err := f.svc.FindOne(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)

	_, err = f.svc.FindOne(context.Background(), missingID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateAndDeleteAreOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.post(t, f.alice, "hello", nil)
	reply := f.post(t, f.bob, "reply", c)

	content := "edited"
	_, err := f.svc.Update(ctx, f.bob.ID, c.ID, UpdateContributionRequest{Content: &content})
	require.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	assert.Equal(t, "You can only edit your own contribution.", err.Error())

	_, err = f.svc.Delete(ctx, f.bob.ID, c.ID)
	require.Error(t, err)
	assert.Equal(t, "You can only delete your own contribution.", err.Error())

	updated, err := f.svc.Update(ctx, f.alice.ID, c.ID, UpdateContributionRequest{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	_, err = f.svc.Delete(ctx, f.alice.ID, c.ID)
	require.NoError(t, err)

	_, err = f.svc.FindOne(ctx, reply.ID)
	assert.True(t, apperror.IsNotFound(err))
	_, err = f.svc.Delete(ctx, f.alice.ID, c.ID)
	assert.True(t, apperror.IsNotFound(err))

	assert.Equal(t, []string{
		events.ContributionCreated,
		events.ContributionCreated,
		events.ContributionUpdated,
		events.ContributionDeleted,
	}, f.publisher.names())
}

func TestNilPublisher(t *testing.T) {
	f := newFixture(t)
	svc := NewContributionService(f.store, nil, nil)

	_, err := svc.Create(context.Background(), f.alice.ID, CreateContributionRequest{Content: "x", ThreadID: f.thread.ID})

	assert.NoError(t, err)
}
