// Package postgres implements storage.Store on PostgreSQL with pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/forum-go/domain"
	"github.com/user/forum-go/storage"
)

// PostgreSQL error codes the store translates.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02" // e.g. a malformed uuid literal
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

var _ storage.Store = (*Store)(nil)

// Store runs raw SQL against a pgx pool.
type Store struct {
	db DB
}

// New wraps a connection pool.
func New(db DB) *Store {
	return &Store{db: db}
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() {
	s.db.Close()
}

// mapError translates driver errors into the storage package's errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &storage.UniqueViolationError{Constraint: pgErr.ConstraintName, Err: err}
		case pgForeignKeyViolation, pgInvalidTextRepr:
			return fmt.Errorf("%w: %s", storage.ErrNotFound, pgErr.Message)
		}
	}
	return err
}

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, mapError(err))
}

// === Users ===

const userColumns = `id::text, username, email, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	created, err := scanUser(s.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		u.Username, u.Email, u.PasswordHash))
	if err != nil {
		return nil, wrap("create user", err)
	}
	return created, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return nil, wrap("get user by email", err)
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id))
	if err != nil {
		return nil, wrap("get user by id", err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, wrap("list users", err)
	}
	users, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (*domain.User, error) { return scanUser(r) })
	if err != nil {
		return nil, wrap("list users", err)
	}
	return users, nil
}

// === Topics ===

const topicColumns = `id::text, slug, title, description, tags, visibility, created_by_id::text, created_at, updated_at`

func scanTopic(row pgx.Row) (*domain.Topic, error) {
	var t domain.Topic
	if err := row.Scan(&t.ID, &t.Slug, &t.Title, &t.Description, &t.Tags, &t.Visibility, &t.CreatedByID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return &t, nil
}

func (s *Store) collectTopics(op string, rows pgx.Rows, err error) ([]*domain.Topic, error) {
	if err != nil {
		return nil, wrap(op, err)
	}
	topics, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (*domain.Topic, error) { return scanTopic(r) })
	if err != nil {
		return nil, wrap(op, err)
	}
	return topics, nil
}

func (s *Store) CreateTopic(ctx context.Context, t *domain.Topic) (*domain.Topic, error) {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	created, err := scanTopic(s.db.QueryRow(ctx, `
		INSERT INTO topics (slug, title, description, tags, visibility, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6::uuid)
		RETURNING `+topicColumns,
		t.Slug, t.Title, t.Description, tags, string(t.Visibility), t.CreatedByID))
	if err != nil {
		return nil, wrap("create topic", err)
	}
	return created, nil
}

func (s *Store) GetTopicByID(ctx context.Context, id string) (*domain.Topic, error) {
	t, err := scanTopic(s.db.QueryRow(ctx, `SELECT `+topicColumns+` FROM topics WHERE id = $1::uuid`, id))
	if err != nil {
		return nil, wrap("get topic", err)
	}
	return t, nil
}

func (s *Store) GetTopicBySlug(ctx context.Context, slug string) (*domain.Topic, error) {
	t, err := scanTopic(s.db.QueryRow(ctx, `SELECT `+topicColumns+` FROM topics WHERE slug = $1`, slug))
	if err != nil {
		return nil, wrap("get topic by slug", err)
	}
	return t, nil
}

func (s *Store) ListTopics(ctx context.Context) ([]*domain.Topic, error) {
	rows, err := s.db.Query(ctx, `SELECT `+topicColumns+` FROM topics ORDER BY created_at DESC, id`)
	return s.collectTopics("list topics", rows, err)
}

func (s *Store) ListTopicsByUser(ctx context.Context, userID string) ([]*domain.Topic, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+topicColumns+` FROM topics
		WHERE created_by_id = $1::uuid
		ORDER BY created_at DESC, id`, userID)
	return s.collectTopics("list topics by user", rows, err)
}

func (s *Store) UpdateTopic(ctx context.Context, id string, patch domain.TopicPatch) (*domain.Topic, error) {
	var visibility *string
	if patch.Visibility != nil {
		v := string(*patch.Visibility)
		visibility = &v
	}
	t, err := scanTopic(s.db.QueryRow(ctx, `
		UPDATE topics SET
			title       = COALESCE($2, title),
			slug        = COALESCE($3, slug),
			description = COALESCE($4, description),
			tags        = COALESCE($5::text[], tags),
			visibility  = COALESCE($6, visibility),
			updated_at  = now()
		WHERE id = $1::uuid
		RETURNING `+topicColumns,
		id, patch.Title, patch.Slug, patch.Description, patch.Tags, visibility))
	if err != nil {
		return nil, wrap("update topic", err)
	}
	return t, nil
}

func (s *Store) DeleteTopic(ctx context.Context, id string) (string, error) {
	var title string
	err := s.db.QueryRow(ctx, `DELETE FROM topics WHERE id = $1::uuid RETURNING title`, id).Scan(&title)
	if err != nil {
		return "", wrap("delete topic", err)
	}
	return title, nil
}

func (s *Store) TopicOwnerID(ctx context.Context, id string) (string, error) {
	return s.ownerID(ctx, "topics", id)
}

// ownerID selects only created_by_id. table is always a package constant.
func (s *Store) ownerID(ctx context.Context, table, id string) (string, error) {
	var owner string
	err := s.db.QueryRow(ctx, `SELECT created_by_id::text FROM `+table+` WHERE id = $1::uuid`, id).Scan(&owner)
	if err != nil {
		return "", wrap("get "+table+" owner", err)
	}
	return owner, nil
}

func (s *Store) exists(ctx context.Context, query string, arg string) (bool, error) {
	var ok bool
	if err := s.db.QueryRow(ctx, query, arg).Scan(&ok); err != nil {
		return false, wrap("exists", err)
	}
	return ok, nil
}

// === Threads ===

const threadColumns = `id::text, slug, title, starter_message, topic_id::text, created_by_id::text,
	views_count, replies_count, pinned, category, created_at, updated_at`

func scanThread(row pgx.Row) (*domain.Thread, error) {
	var t domain.Thread
	if err := row.Scan(&t.ID, &t.Slug, &t.Title, &t.StarterMessage, &t.TopicID, &t.CreatedByID,
		&t.ViewsCount, &t.RepliesCount, &t.Pinned, &t.Category, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) TopicExists(ctx context.Context, topicID string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM topics WHERE id = $1::uuid)`, topicID)
}

func (s *Store) ThreadSlugExists(ctx context.Context, slug string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM threads WHERE slug = $1)`, slug)
}

func (s *Store) CreateThread(ctx context.Context, t *domain.Thread) (*domain.Thread, error) {
	created, err := scanThread(s.db.QueryRow(ctx, `
		INSERT INTO threads (slug, title, starter_message, topic_id, created_by_id, views_count, replies_count, pinned, category)
		VALUES ($1, $2, $3, $4::uuid, $5::uuid, $6, $7, $8, $9)
		RETURNING `+threadColumns,
		t.Slug, t.Title, t.StarterMessage, t.TopicID, t.CreatedByID,
		t.ViewsCount, t.RepliesCount, t.Pinned, string(t.Category)))
	if err != nil {
		return nil, wrap("create thread", err)
	}
	return created, nil
}

func (s *Store) GetThreadByID(ctx context.Context, id string) (*domain.Thread, error) {
	t, err := scanThread(s.db.QueryRow(ctx, `SELECT `+threadColumns+` FROM threads WHERE id = $1::uuid`, id))
	if err != nil {
		return nil, wrap("get thread", err)
	}
	return t, nil
}

func (s *Store) ListThreadsByTopic(ctx context.Context, topicID string) ([]*domain.Thread, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+threadColumns+` FROM threads
		WHERE topic_id = $1::uuid
		ORDER BY created_at DESC, id`, topicID)
	if err != nil {
		return nil, wrap("list threads", err)
	}
	threads, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (*domain.Thread, error) { return scanThread(r) })
	if err != nil {
		return nil, wrap("list threads", err)
	}
	return threads, nil
}

func (s *Store) UpdateThread(ctx context.Context, id string, patch domain.ThreadPatch) (*domain.Thread, error) {
	var category *string
	if patch.Category != nil {
		c := string(*patch.Category)
		category = &c
	}
	t, err := scanThread(s.db.QueryRow(ctx, `
		UPDATE threads SET
			title           = COALESCE($2, title),
			starter_message = COALESCE($3, starter_message),
			category        = COALESCE($4, category),
			pinned          = COALESCE($5, pinned),
			updated_at      = now()
		WHERE id = $1::uuid
		RETURNING `+threadColumns,
		id, patch.Title, patch.StarterMessage, category, patch.Pinned))
	if err != nil {
		return nil, wrap("update thread", err)
	}
	return t, nil
}

func (s *Store) DeleteThread(ctx context.Context, id string) (*domain.Thread, error) {
	t, err := scanThread(s.db.QueryRow(ctx, `DELETE FROM threads WHERE id = $1::uuid RETURNING `+threadColumns, id))
	if err != nil {
		return nil, wrap("delete thread", err)
	}
	return t, nil
}

func (s *Store) ThreadOwnerID(ctx context.Context, id string) (string, error) {
	return s.ownerID(ctx, "threads", id)
}

func (s *Store) IncrementThreadViews(ctx context.Context, deltas map[string]int) error {
	if len(deltas) == 0 {
		return nil
	}
	ids := make([]string, 0, len(deltas))
	counts := make([]int32, 0, len(deltas))
	for id, n := range deltas {
		ids = append(ids, id)
		counts = append(counts, int32(n))
	}
	_, err := s.db.Exec(ctx, `
		UPDATE threads AS t
		SET views_count = t.views_count + d.n
		FROM unnest($1::uuid[], $2::int[]) AS d(id, n)
		WHERE t.id = d.id`, ids, counts)
	if err != nil {
		return wrap("increment thread views", err)
	}
	return nil
}

// === Contributions ===

// contributionSelect projects a contribution aliased c joined with its author aliased u.
const contributionSelect = `c.id::text, c.content, c.thread_id::text, c.created_by_id::text,
	c.parent_contribution_id::text, c.created_at, c.updated_at, u.id::text, u.username`

func scanContribution(row pgx.Row) (*domain.Contribution, error) {
	var (
		c      domain.Contribution
		author domain.Author
	)
	if err := row.Scan(&c.ID, &c.Content, &c.ThreadID, &c.CreatedByID,
		&c.ParentContributionID, &c.CreatedAt, &c.UpdatedAt, &author.ID, &author.Username); err != nil {
		return nil, err
	}
	c.Author = &author
	return &c, nil
}

func (s *Store) ThreadExists(ctx context.Context, threadID string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM threads WHERE id = $1::uuid)`, threadID)
}

func (s *Store) CreateContribution(ctx context.Context, c *domain.Contribution) (*domain.Contribution, error) {
	created, err := scanContribution(s.db.QueryRow(ctx, `
		WITH c AS (
			INSERT INTO contributions (content, thread_id, created_by_id, parent_contribution_id)
			VALUES ($1, $2::uuid, $3::uuid, $4::uuid)
			RETURNING *
		), bump AS (
			UPDATE threads SET replies_count = replies_count + 1
			WHERE id = (SELECT thread_id FROM c)
		)
		SELECT `+contributionSelect+`
		FROM c JOIN users u ON u.id = c.created_by_id`,
		c.Content, c.ThreadID, c.CreatedByID, c.ParentContributionID))
	if err != nil {
		return nil, wrap("create contribution", err)
	}
	return created, nil
}

func (s *Store) GetContributionByID(ctx context.Context, id string) (*domain.Contribution, error) {
	c, err := scanContribution(s.db.QueryRow(ctx, `
		SELECT `+contributionSelect+`
		FROM contributions c JOIN users u ON u.id = c.created_by_id
		WHERE c.id = $1::uuid`, id))
	if err != nil {
		return nil, wrap("get contribution", err)
	}
	return c, nil
}

func (s *Store) ListContributionsByThread(ctx context.Context, threadID string) ([]*domain.Contribution, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+contributionSelect+`
		FROM contributions c JOIN users u ON u.id = c.created_by_id
		WHERE c.thread_id = $1::uuid
		ORDER BY c.created_at, c.id`, threadID)
	if err != nil {
		return nil, wrap("list contributions", err)
	}
	list, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (*domain.Contribution, error) { return scanContribution(r) })
	if err != nil {
		return nil, wrap("list contributions", err)
	}
	return list, nil
}

func (s *Store) UpdateContribution(ctx context.Context, id string, patch domain.ContributionPatch) (*domain.Contribution, error) {
	c, err := scanContribution(s.db.QueryRow(ctx, `
		WITH c AS (
			UPDATE contributions SET
				content    = COALESCE($2, content),
				updated_at = now()
			WHERE id = $1::uuid
			RETURNING *
		)
		SELECT `+contributionSelect+`
		FROM c JOIN users u ON u.id = c.created_by_id`,
		id, patch.Content))
	if err != nil {
		return nil, wrap("update contribution", err)
	}
	return c, nil
}

// DeleteContribution removes the contribution; its replies go with it through
// ON DELETE CASCADE, and the thread's replies_count drops by the subtree size.
func (s *Store) DeleteContribution(ctx context.Context, id string) (*domain.Contribution, error) {
	c, err := scanContribution(s.db.QueryRow(ctx, `
		WITH RECURSIVE subtree AS (
			SELECT id FROM contributions WHERE id = $1::uuid
			UNION ALL
			SELECT child.id FROM contributions child JOIN subtree ON child.parent_contribution_id = subtree.id
		), c AS (
			DELETE FROM contributions WHERE id = $1::uuid
			RETURNING *
		), bump AS (
			UPDATE threads
			SET replies_count = GREATEST(replies_count - (SELECT count(*) FROM subtree), 0)
			WHERE id = (SELECT thread_id FROM c)
		)
		SELECT `+contributionSelect+`
		FROM c JOIN users u ON u.id = c.created_by_id`, id))
	if err != nil {
		return nil, wrap("delete contribution", err)
	}
	return c, nil
}

func (s *Store) ContributionOwnerID(ctx context.Context, id string) (string, error) {
	return s.ownerID(ctx, "contributions", id)
}
