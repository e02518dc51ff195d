package contributions

// CreateContributionRequest is the body of POST /contributions. A missing
// parentContributionId makes a top-level post.
type CreateContributionRequest struct {
	Content              string  `json:"content" validate:"required,max=20000" example:"I think Seneca's letters are the best entry point."`
	ThreadID             string  `json:"threadId" validate:"required,uuid" example:"5b0f6c0e-6f0a-4c39-9a55-0c8d1c7e2a41"`
	ParentContributionID *string `json:"parentContributionId,omitempty" validate:"omitempty,uuid"`
}

// UpdateContributionRequest is the body of PATCH /contributions/{id}.
type UpdateContributionRequest struct {
	Content *string `json:"content,omitempty" validate:"omitempty,min=1,max=20000"`
}
