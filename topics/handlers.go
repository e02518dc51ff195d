package topics

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/auth"
	"github.com/user/forum-go/response"
	"github.com/user/forum-go/validate"
)

// TopicHandlers provides HTTP handlers for topics.
type TopicHandlers struct {
	service *TopicService
}

// NewTopicHandlers creates new TopicHandlers.
func NewTopicHandlers(service *TopicService) *TopicHandlers {
	return &TopicHandlers{service: service}
}

// RegisterRoutes mounts the /topics endpoints on r. r must already require authentication.
func (h *TopicHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreateTopic())
	r.Get("/", h.HandleListTopics())
	r.Get("/{id}", h.HandleGetTopic())
	r.Patch("/{id}", h.HandleUpdateTopic())
	r.Delete("/{id}", h.HandleDeleteTopic())
}

// HandleCreateTopic godoc
// @Summary Create a topic
// @Description Creates a topic owned by the caller. The slug is derived from the title and must be unique.
// @Tags Topics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param topic body topics.CreateTopicRequest true "Topic to create"
// @Success 201 {object} response.Envelope{data=domain.Topic} "Topic created successfully"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 409 {object} apperror.ErrorResponse "Conflict - A topic with the same title already exists"
// @Router /topics [post]
func (h *TopicHandlers) HandleCreateTopic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			response.Error(w, r, apperror.NewAuthError("Unauthorized. Invalid or expired token.", nil))
			return
		}

		var req CreateTopicRequest
		if err := validate.Decode(r, &req); err != nil {
			response.Error(w, r, err)
			return
		}

		topic, err := h.service.Create(r.Context(), userID, req)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.Data(w, http.StatusCreated, "Topic created successfully", topic)
	}
}

// HandleListTopics godoc
// @Summary List topics
// @Description Lists every topic, newest first.
// @Tags Topics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]domain.Topic} "List of topics"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Router /topics [get]
func (h *TopicHandlers) HandleListTopics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.service.FindAll(r.Context())
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, "List of topics", list)
	}
}

// HandleListMyTopics godoc
// @Summary List my topics
// @Description Lists the topics created by the caller, newest first.
// @Tags Topics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]domain.Topic} "List of topics"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Router /users/me/topics [get]
func (h *TopicHandlers) HandleListMyTopics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			response.Error(w, r, apperror.NewAuthError("Unauthorized. Invalid or expired token.", nil))
			return
		}
		list, err := h.service.FindAllByUser(r.Context(), userID)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, "List of topics", list)
	}
}

// HandleGetTopic godoc
// @Summary Get a topic
// @Tags Topics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Topic ID"
// @Success 200 {object} response.Envelope{data=domain.Topic} "Topic found"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - Topic not found"
// @Router /topics/{id} [get]
func (h *TopicHandlers) HandleGetTopic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic, err := h.service.FindOne(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, "Topic found", topic)
	}
}

// HandleUpdateTopic godoc
// @Summary Update a topic
// @Description Partially updates a topic. Only its creator may do so. A new title re-derives the slug.
// @Tags Topics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Topic ID"
// @Param topic body topics.UpdateTopicRequest true "Fields to change"
// @Success 200 {object} response.Envelope{data=domain.Topic} "Topic updated"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 403 {object} apperror.ErrorResponse "Forbidden - Not the owner"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - Topic not found"
// @Failure 409 {object} apperror.ErrorResponse "Conflict - A topic with the same title already exists"
// @Router /topics/{id} [patch]
func (h *TopicHandlers) HandleUpdateTopic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			response.Error(w, r, apperror.NewAuthError("Unauthorized. Invalid or expired token.", nil))
			return
		}

		var req UpdateTopicRequest
		if err := validate.Decode(r, &req); err != nil {
			response.Error(w, r, err)
			return
		}

		topic, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), req)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, fmt.Sprintf("Topic %q updated successfully", topic.Title), topic)
	}
}

// HandleDeleteTopic godoc
// @Summary Delete a topic
// @Description Deletes a topic with all its threads and contributions. Only its creator may do so.
// @Tags Topics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Topic ID"
// @Success 200 {object} response.MessageOnly "Topic deleted"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 403 {object} apperror.ErrorResponse "Forbidden - Not the owner"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - Topic not found"
// @Router /topics/{id} [delete]
func (h *TopicHandlers) HandleDeleteTopic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			response.Error(w, r, apperror.NewAuthError("Unauthorized. Invalid or expired token.", nil))
			return
		}

		title, err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.Message(w, http.StatusOK, fmt.Sprintf("Topic %q deleted successfully", title))
	}
}
