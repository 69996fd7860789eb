package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"bnbBack/internal/models"
	"bnbBack/internal/services"
)

const maxUploadSize = 10 << 20

type AdHandler struct {
	Service *services.AdService
}

func (h *AdHandler) GetAds(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		RespondError(w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		RespondError(w, err)
		return
	}

	resp, err := h.Service.ListAds(r.Context(), page, limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	if resp.Ads == nil {
		resp.Ads = []models.Ad{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdHandler) GetAdByID(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	ad, err := h.Service.GetAdByID(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ad)
}

func (h *AdHandler) GetAdBySlug(w http.ResponseWriter, r *http.Request) {
	ad, err := h.Service.GetAdBySlug(r.Context(), getParam(r, "slug"))
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ad)
}

func (h *AdHandler) CreateAd(w http.ResponseWriter, r *http.Request) {
	authorID, err := requireCaller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var req models.AdRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, err)
		return
	}

	ad, err := h.Service.CreateAd(r.Context(), authorID, req)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ad)
}

func (h *AdHandler) UpdateAd(w http.ResponseWriter, r *http.Request) {
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
	var req models.AdRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, err)
		return
	}

	ad, err := h.Service.UpdateAd(r.Context(), actorID, id, req)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ad)
}

func (h *AdHandler) DeleteAd(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Service.DeleteAd(r.Context(), actorID, id); err != nil {
		RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	resp, err := h.Service.NotAvailableDays(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	resp, err := h.Service.AverageRating(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// AddImage accepts either a JSON {url, caption} document or a multipart upload in the
// "file" field, which is stored in object storage first.
func (h *AdHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	actorID, err := requireCaller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	adID, err := intParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	var img models.Image
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		img, err = h.upload(w, r, actorID, adID)
	} else {
		var req models.ImageRequest
		if err = decodeJSON(r, &req); err == nil {
			img, err = h.Service.AddImage(r.Context(), actorID, adID, req)
		}
	}
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

func (h *AdHandler) upload(w http.ResponseWriter, r *http.Request, actorID, adID int) (models.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return models.Image{}, models.NewValidationError("file", "file exceeds %d bytes", maxUploadSize)
		}
		return models.Image{}, models.NewValidationError("file", "invalid multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return models.Image{}, models.NewValidationError("file", "file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.Image{}, models.NewValidationError("file", "could not read file")
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return models.Image{}, models.NewValidationError("file", "unsupported content type %q", contentType)
	}

	return h.Service.UploadImage(r.Context(), actorID, adID, data, header.Filename, contentType, r.FormValue("caption"))
}

func (h *AdHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	actorID, err := requireCaller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	adID, err := intParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	imageID, err := intParam(r, "image_id")
	if err != nil {
		RespondError(w, err)
		return
	}

	if err := h.Service.RemoveImage(r.Context(), actorID, adID, imageID); err != nil {
		RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
