package topics

import "github.com/user/forum-go/domain"

// CreateTopicRequest is the body of POST /topics.
type CreateTopicRequest struct {
	Title       string             `json:"title" validate:"required,max=200" example:"The Philosophy of Stoicism"`
	Description string             `json:"description" validate:"max=5000" example:"An exploration of ancient Stoic principles and their modern relevance."`
	Tags        []string           `json:"tags" validate:"required,max=20,dive,required,max=50" example:"philosophy,stoicism,ethics"`
	Visibility  *domain.Visibility `json:"visibility,omitempty" validate:"omitempty,oneof=PUBLIC PRIVATE" example:"PUBLIC"`
}

// UpdateTopicRequest is the body of PATCH /topics/{id}. Omitted fields keep their value.
type UpdateTopicRequest struct {
	Title       *string            `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string            `json:"description,omitempty" validate:"omitempty,max=5000"`
	Tags        *[]string          `json:"tags,omitempty" validate:"omitempty,max=20,dive,required,max=50"`
	Visibility  *domain.Visibility `json:"visibility,omitempty" validate:"omitempty,oneof=PUBLIC PRIVATE"`
}
