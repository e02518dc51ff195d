package contributions

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/auth"
	"github.com/user/forum-go/response"
	"github.com/user/forum-go/validate"
)

// ContributionHandlers provides HTTP handlers for contributions.
type ContributionHandlers struct {
	service *ContributionService
}

// NewContributionHandlers creates new ContributionHandlers.
func NewContributionHandlers(service *ContributionService) *ContributionHandlers {
	return &ContributionHandlers{service: service}
}

// RegisterRoutes mounts the /contributions endpoints on r. r must already require authentication.
func (h *ContributionHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreateContribution())
	r.Get("/thread/{threadId}", h.HandleListByThread())
	r.Get("/{id}", h.HandleGetContribution())
	r.Patch("/{id}", h.HandleUpdateContribution())
	r.Delete("/{id}", h.HandleDeleteContribution())
}

// HandleCreateContribution godoc
// @Summary Post a contribution
// @Description Posts into a thread, or replies to another contribution of the same thread.
// @Tags Contributions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param contribution body contributions.CreateContributionRequest true "Contribution to post"
// @Success 201 {object} response.Envelope{data=domain.Contribution} "Contribution created successfully"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input or parent in another thread"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - Thread or parent contribution not found"
// @Router /contributions [post]
func (h *ContributionHandlers) HandleCreateContribution() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			response.Error(w, r, apperror.NewAuthError("Unauthorized. Invalid or expired token.", nil))
			return
		}

		var req CreateContributionRequest
		if err := validate.Decode(r, &req); err != nil {
			response.Error(w, r, err)
			return
		}

		c, err := h.service.Create(r.Context(), userID, req)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.Data(w, http.StatusCreated, "Contribution created successfully", c)
	}
}

// HandleListByThread godoc
// @Summary List contributions of a thread
// @Description Returns the top-level contributions of a thread, each with its nested replies. Every level is oldest first.
// @Tags Contributions
// @Produce json
// @Security BearerAuth
// @Param threadId path string true "Thread ID"
// @Success 200 {object} response.Envelope{data=[]domain.Contribution} "Contributions found"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Router /contributions/thread/{threadId} [get]
func (h *ContributionHandlers) HandleListByThread() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.service.FindByThread(r.Context(), chi.URLParam(r, "threadId"))
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, "Contributions found", list)
	}
}

// HandleGetContribution godoc
// @Summary Get a contribution
// @Tags Contributions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contribution ID"
// @Success 200 {object} response.Envelope{data=domain.Contribution} "Contribution found"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - Contribution not found"
// @Router /contributions/{id} [get]
func (h *ContributionHandlers) HandleGetContribution() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := h.service.FindOne(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, "Contribution found", c)
	}
}

// HandleUpdateContribution godoc
// @Summary Edit a contribution
// @Tags Contributions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contribution ID"
// @Param contribution body contributions.UpdateContributionRequest true "New content"
// @Success 200 {object} response.Envelope{data=domain.Contribution} "Contribution updated successfully"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 403 {object} apperror.ErrorResponse "Forbidden - Not the owner"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - Contribution not found"
// @Router /contributions/{id} [patch]
func (h *ContributionHandlers) HandleUpdateContribution() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			response.Error(w, r, apperror.NewAuthError("Unauthorized. Invalid or expired token.", nil))
			return
		}

		var req UpdateContributionRequest
		if err := validate.Decode(r, &req); err != nil {
			response.Error(w, r, err)
			return
		}

		c, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), req)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.Data(w, http.StatusOK, "Contribution updated successfully", c)
	}
}

// HandleDeleteContribution godoc
// @Summary Delete a contribution
// @Description Deletes a contribution and every reply below it. Only its author may do so.
// @Tags Contributions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contribution ID"
// @Success 200 {object} response.MessageOnly "Contribution deleted successfully"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 403 {object} apperror.ErrorResponse "Forbidden - Not the owner"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - Contribution not found"
// @Router /contributions/{id} [delete]
func (h *ContributionHandlers) HandleDeleteContribution() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			response.Error(w, r, apperror.NewAuthError("Unauthorized. Invalid or expired token.", nil))
			return
		}

		if _, err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
			response.Error(w, r, err)
			return
		}
		response.Message(w, http.StatusOK, "Contribution deleted successfully")
	}
}
