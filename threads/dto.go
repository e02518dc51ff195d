package threads

import "github.com/user/forum-go/domain"

// CreateThreadRequest is the body of POST /threads.
type CreateThreadRequest struct {
	Title          string           `json:"title" validate:"required,max=200" example:"Intro"`
	StarterMessage string           `json:"starterMessage" validate:"required,max=10000" example:"Where should a beginner start?"`
	TopicID        string           `json:"topicId" validate:"required" example:"5b0f6c0e-6f0a-4c39-9a55-0c8d1c7e2a41"`
	Category       *domain.Category `json:"category,omitempty" validate:"omitempty,oneof=DISCUSSION QUESTION ANNOUNCEMENT" example:"DISCUSSION"`
}

// UpdateThreadRequest is the body of PATCH /threads/{id}. Omitted fields keep their value.
type UpdateThreadRequest struct {
	Title          *string          `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	StarterMessage *string          `json:"starterMessage,omitempty" validate:"omitempty,min=1,max=10000"`
	Category       *domain.Category `json:"category,omitempty" validate:"omitempty,oneof=DISCUSSION QUESTION ANNOUNCEMENT"`
	Pinned         *bool            `json:"pinned,omitempty"`
}
