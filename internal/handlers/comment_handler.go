package handlers

import (
	"net/http"

	"bnbBack/internal/models"
	"bnbBack/internal/services"
)

type CommentHandler struct {
	Service *services.CommentService
}

func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	authorID, err := requireCaller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	adID, err := intParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var req models.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, err)
		return
	}

	comment, err := h.Service.CreateComment(r.Context(), authorID, adID, req)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) GetCommentsByAd(w http.ResponseWriter, r *http.Request) {
	adID, err := intParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	comments, err := h.Service.GetCommentsByAdID(r.Context(), adID)
	if err != nil {
		RespondError(w, err)
		return
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

// GetCommentFromAuthor returns the comment a given user left on the ad.
func (h *CommentHandler) GetCommentFromAuthor(w http.ResponseWriter, r *http.Request) {
	adID, err := intParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	authorID, err := intParam(r, "user_id")
	if err != nil {
		RespondError(w, err)
		return
	}

	comment, err := h.Service.GetCommentFromAuthor(r.Context(), adID, authorID)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	actorID, err := requireCaller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	id, err := intParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	if err := h.Service.DeleteComment(r.Context(), actorID, id); err != nil {
		RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
