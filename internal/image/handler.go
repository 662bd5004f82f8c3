package image

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gallery/service/internal/middleware"
	"github.com/gallery/service/internal/response"
)

// Handler holds HTTP handlers for the upload and gallery endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new image Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type presignRequest struct {
	ContentType string  `json:"contentType" example:"image/jpeg"`
	FileName    string  `json:"fileName"    example:"photo.jpg"`
	Title       string  `json:"title"       example:"Sunset over the bay"`
	Dimensions  *string `json:"dimensions,omitempty" example:"1920x1080"`
	FileSize    *int64  `json:"fileSize,omitempty"   example:"524288"`
}

type presignResponse struct {
	UploadURL string `json:"uploadUrl"`
	ImageID   string `json:"imageId"`
}

type confirmRequest struct {
	ImageID string `json:"imageId"`
}

type confirmResponse struct {
	ImageID   string `json:"imageId"`
	PublicURL string `json:"publicUrl"`
	Status    Status `json:"status"`
}

type listResponse struct {
	Items []Image `json:"items"`
}

// PresignUpload godoc
//
//	@Summary		Request an upload grant
//	@Description	Validates the declared file metadata, records a pending asset, and returns a time-limited direct-write URL plus the new image ID.
//	@Tags			uploads
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		presignRequest	true	"Upload metadata"
//	@Success		200		{object}	presignResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		401		{object}	response.ErrorBody
//	@Failure		403		{object}	response.ErrorBody
//	@Router			/api/presign-upload [post]
func (h *Handler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req presignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	result, err := h.svc.Presign(r.Context(), ident.Subject, PresignRequest{
		ContentType: req.ContentType,
		FileName:    req.FileName,
		Title:       req.Title,
		Dimensions:  req.Dimensions,
		FileSize:    req.FileSize,
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(w, verr.Reason, map[string]string{"field": verr.Field})
			return
		}
		log.Printf("presign upload failed: %v", err)
		response.InternalError(w)
		return
	}

	response.OK(w, presignResponse{UploadURL: result.UploadURL, ImageID: result.ImageID})
}

// ConfirmUpload godoc
//
//	@Summary		Confirm a completed upload
//	@Description	Marks the asset confirmed after the client finished its direct write. Repeated confirms by the owner succeed without changes.
//	@Tags			uploads
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		confirmRequest	true	"Image ID"
//	@Success		200		{object}	confirmResponse
//	@Failure		403		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/api/confirm-upload [post]
func (h *Handler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.ImageID == "" {
		response.BadRequest(w, "imageId is required")
		return
	}

	img, err := h.svc.Confirm(r.Context(), ident.Subject, req.ImageID)
	if err != nil {
		h.writeImageError(w, err)
		return
	}

	response.OK(w, confirmResponse{ImageID: img.ImageID, PublicURL: img.PublicURL, Status: img.Status})
}

// ListImages godoc
//
//	@Summary		List gallery images
//	@Description	Returns the caller's own images, or every image for admins, newest first.
//	@Tags			images
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	listResponse
//	@Failure		401	{object}	response.ErrorBody
//	@Router			/api/images [get]
func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	items, err := h.svc.List(r.Context(), ident.Subject, ident.Groups)
	if err != nil {
		log.Printf("list images failed: %v", err)
		response.InternalError(w)
		return
	}

	response.OK(w, listResponse{Items: items})
}

// DeleteImage godoc
//
//	@Summary		Delete an image
//	@Description	Removes the stored object and its metadata record. Owners may delete their own images; admins may delete any.
//	@Tags			images
//	@Produce		json
//	@Security		BearerAuth
//	@Param			imageID	path		string	true	"Image ID"
//	@Success		200		{object}	map[string]bool
//	@Failure		403		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/api/images/{imageID} [delete]
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	imageID := chi.URLParam(r, "imageID")
	if imageID == "" {
		response.BadRequest(w, "imageId is required")
		return
	}

	if err := h.svc.Delete(r.Context(), ident.Subject, ident.Groups, imageID); err != nil {
		h.writeImageError(w, err)
		return
	}

	response.OK(w, map[string]bool{"ok": true})
}

// writeImageError maps domain errors onto the HTTP error taxonomy.
func (h *Handler) writeImageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "image not found")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "forbidden")
	default:
		log.Printf("image operation failed: %v", err)
		response.InternalError(w)
	}
}
