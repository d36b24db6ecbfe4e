// internal/circulation/handler.go
package circulation

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"libris/internal/apperr"
	"libris/internal/respond"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleList)
	r.Post("/", h.handleBorrow)
	r.Get("/overdue", h.handleOverdue)
	r.Put("/{id}/return", h.handleReturn)
	return r
}

type borrowRequest struct {
	BookID int64 `json:"book_id"`
	UserID int64 `json:"user_id"`
}

type borrowResponse struct {
	ID      int64     `json:"id"`
	DueDate time.Time `json:"due_date"`
	Message string    `json:"message"`
}

func (h *Handler) handleBorrow(w http.ResponseWriter, r *http.Request) {
	var req borrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperr.Validation("invalid request body"))
		return
	}

	borrowing, err := h.service.Borrow(r.Context(), req.BookID, req.UserID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, borrowResponse{
		ID:      borrowing.ID,
		DueDate: borrowing.DueDate,
		Message: "book borrowed successfully",
	})
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, apperr.Validation("invalid borrowing id"))
		return
	}

	if err := h.service.Return(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"message": "book returned successfully"})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, records)
}

func (h *Handler) handleOverdue(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Overdue(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, records)
}

// HandleHistory serves one user's borrowing history; mounted under the
// users subtree.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, apperr.Validation("invalid user id"))
		return
	}

	records, err := h.service.History(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, records)
}
