// Package domain holds the forum's entity types. They are shared by the
// services, which own the rules, and the storage backends, which persist them.
package domain

import "time"

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id" example:"5b0f6c0e-6f0a-4c39-9a55-0c8d1c7e2a41"`
	Username     string    `json:"username" example:"DemoUser"`
	Email        string    `json:"email" example:"demo@example.com"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Visibility of a topic.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// Category of a thread.
type Category string

const (
	CategoryDiscussion   Category = "DISCUSSION"
	CategoryQuestion     Category = "QUESTION"
	CategoryAnnouncement Category = "ANNOUNCEMENT"
)

// Topic groups threads under a subject. Its slug is unique among topics.
type Topic struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug" example:"stoicism"`
	Title       string     `json:"title" example:"Stoicism"`
	Description string     `json:"description" example:"An exploration of ancient Stoic principles."`
	Tags        []string   `json:"tags" example:"philosophy,ethics"`
	Visibility  Visibility `json:"visibility" example:"PUBLIC"`
	CreatedByID string     `json:"createdById"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TopicPatch lists the topic fields an update may change. Nil means unchanged.
type TopicPatch struct {
	Title       *string
	Slug        *string
	Description *string
	Tags        *[]string
	Visibility  *Visibility
}

// Thread is a conversation inside a topic. Its slug is unique among threads.
type Thread struct {
	ID             string    `json:"id"`
	Slug           string    `json:"slug" example:"intro-1"`
	Title          string    `json:"title" example:"Intro"`
	StarterMessage string    `json:"starterMessage" example:"Where should a beginner start?"`
	TopicID        string    `json:"topicId"`
	CreatedByID    string    `json:"createdById"`
	ViewsCount     int       `json:"viewsCount"`
	RepliesCount   int       `json:"repliesCount"`
	Pinned         bool      `json:"pinned"`
	Category       Category  `json:"category" example:"DISCUSSION"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ThreadPatch lists the thread fields an update may change. Nil means unchanged.
type ThreadPatch struct {
	Title          *string
	StarterMessage *string
	Category       *Category
	Pinned         *bool
}

// Author is the public projection of a user attached to contributions.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username" example:"DemoUser"`
}

// Contribution is a post in a thread. A nil ParentContributionID marks a
// top-level post; otherwise it is a reply.
type Contribution struct {
	ID                   string          `json:"id"`
	Content              string          `json:"content" example:"I think Seneca's letters are the best entry point."`
	ThreadID             string          `json:"threadId"`
	CreatedByID          string          `json:"createdById"`
	ParentContributionID *string         `json:"parentContributionId"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
	Author               *Author         `json:"author,omitempty"`
	Replies              []*Contribution `json:"replies,omitzero"`
}

// ContributionPatch lists the contribution fields an update may change.
type ContributionPatch struct {
	Content *string
}

// BuildReplyTree nests a flat list of contributions under their parents.
// Input order is kept at every level, so callers pass it sorted oldest-first.
// Items whose parent is not in the list are treated as roots. Every node gets a
// non-nil Replies slice so leaves encode as "replies": [].
func BuildReplyTree(flat []*Contribution) []*Contribution {
	byID := make(map[string]*Contribution, len(flat))
	for _, c := range flat {
		c.Replies = []*Contribution{}
		byID[c.ID] = c
	}

	roots := make([]*Contribution, 0)
	for _, c := range flat {
		if c.ParentContributionID != nil {
			if parent, ok := byID[*c.ParentContributionID]; ok && parent != c {
				parent.Replies = append(parent.Replies, c)
				continue
			}
		}
		roots = append(roots, c)
	}
	return roots
}
