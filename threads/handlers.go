package threads

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/auth"
	"github.com/user/forum-go/response"
	"github.com/user/forum-go/validate"
)

// Streamer writes a thread's live events to the client until it disconnects.
type Streamer interface {
	Stream(w http.ResponseWriter, r *http.Request, threadID string) error
}

// ThreadHandlers provides HTTP handlers for threads.
type ThreadHandlers struct {
	service  *ThreadService
	streamer Streamer
}

// NewThreadHandlers creates new ThreadHandlers. streamer may be nil, which
// leaves the events endpoint unmounted.
func NewThreadHandlers(service *ThreadService, streamer Streamer) *ThreadHandlers {
	return &ThreadHandlers{service: service, streamer: streamer}
}

// RegisterRoutes mounts the /threads endpoints on r. r must already require authentication.
func (h *ThreadHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreateThread())
	r.Get("/by-topic/{topicId}", h.HandleListThreadsByTopic())
	r.Get("/{id}", h.HandleGetThread())
	r.Patch("/{id}", h.HandleUpdateThread())
	r.Delete("/{id}", h.HandleDeleteThread())
	if h.streamer != nil {
		r.Get("/{id}/events", h.HandleThreadEvents())
	}
}

// HandleCreateThread godoc
// @Summary Create a thread
// @Description Creates a thread in an existing topic. A taken slug gets a numeric suffix (-1, -2, ...).
// @Tags Threads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param thread body threads.CreateThreadRequest true "Thread to create"
// @Success 201 {object} response.Envelope{data=domain.Thread} "Thread created successfully"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - Topic not found"
// @Router /threads [post]
func (h *ThreadHandlers) HandleCreateThread() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			response.Error(w, r, apperror.NewAuthError("Unauthorized. Invalid or expired token.", nil))
			return
		}

		var req CreateThreadRequest
		if err := validate.Decode(r, &req); err != nil {
			response.Error(w, r, err)
			return
		}

		thread, err := h.service.Create(r.Context(), userID, req)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.Data(w, http.StatusCreated, "Thread created successfully", thread)
	}
}

// HandleListThreadsByTopic godoc
// @Summary List threads of a topic
// @Description Lists the threads of a topic, newest first.
// @Tags Threads
// @Produce json
// @Security BearerAuth
// @Param topicId path string true "Topic ID"
// @Success 200 {object} response.Envelope{data=[]domain.Thread} "Threads found"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - Topic not found"
// @Router /threads/by-topic/{topicId} [get]
func (h *ThreadHandlers) HandleListThreadsByTopic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.service.FindByTopic(r.Context(), chi.URLParam(r, "topicId"))
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, "Threads found", list)
	}
}

// HandleGetThread godoc
// @Summary Get a thread
// @Description Returns a thread and counts a view. View counts are written in batches, so viewsCount lags behind.
// @Tags Threads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Thread ID"
// @Success 200 {object} response.Envelope{data=domain.Thread} "Thread found"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - Thread not found"
// @Router /threads/{id} [get]
func (h *ThreadHandlers) HandleGetThread() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		thread, err := h.service.FindOne(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, "Thread found", thread)
	}
}

// HandleUpdateThread godoc
// @Summary Update a thread
// @Description Partially updates a thread. Only its creator may do so. The slug never changes.
// @Tags Threads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Thread ID"
// @Param thread body threads.UpdateThreadRequest true "Fields to change"
// @Success 200 {object} response.Envelope{data=domain.Thread} "Thread updated successfully"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 403 {object} apperror.ErrorResponse "Forbidden - Not the owner"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - Thread not found"
// @Router /threads/{id} [patch]
func (h *ThreadHandlers) HandleUpdateThread() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			response.Error(w, r, apperror.NewAuthError("Unauthorized. Invalid or expired token.", nil))
			return
		}

		var req UpdateThreadRequest
		if err := validate.Decode(r, &req); err != nil {
			response.Error(w, r, err)
			return
		}

		thread, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), req)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, "Thread updated successfully", thread)
	}
}

// HandleDeleteThread godoc
// @Summary Delete a thread
// @Description Deletes a thread with all its contributions. Only its creator may do so.
// @Tags Threads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Thread ID"
// @Success 200 {object} response.MessageOnly "Thread deleted"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 403 {object} apperror.ErrorResponse "Forbidden - Not the owner"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - Thread not found"
// @Router /threads/{id} [delete]
func (h *ThreadHandlers) HandleDeleteThread() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			response.Error(w, r, apperror.NewAuthError("Unauthorized. Invalid or expired token.", nil))
			return
		}

		deleted, err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.Message(w, http.StatusOK, "Thread deleted successfully: "+deleted.Title)
	}
}

// HandleThreadEvents godoc
// @Summary Follow a thread
// @Description Server-Sent Events stream of contribution.created, contribution.updated and contribution.deleted events for the thread.
// @Tags Threads
// @Produce text/event-stream
// @Security BearerAuth
// @Param id path string true "Thread ID"
// @Success 200 {string} string "event stream"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - Thread not found"
// @Router /threads/{id}/events [get]
func (h *ThreadHandlers) HandleThreadEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := h.service.Exists(r.Context(), id); err != nil {
			response.Error(w, r, err)
			return
		}
		if err := h.streamer.Stream(w, r, id); err != nil {
			// Stream only fails before anything is written.
			response.Error(w, r, apperror.NewInternalError("streaming unsupported", err))
		}
	}
}
