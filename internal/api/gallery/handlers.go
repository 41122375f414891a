// internal/api/gallery/handlers.go
package gallery

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/villadaniela/fincaweb/internal/api/apiutil"
	"github.com/villadaniela/fincaweb/internal/db"
	"github.com/villadaniela/fincaweb/internal/media"
	"github.com/villadaniela/fincaweb/internal/models"
)

const (
	galleryQueryTimeout = 5 * time.Second
	uploadTimeout       = 30 * time.Second
	maxUploadSize       = 10 << 20 // 10MB
	imageFormField      = "image"
	altTextFormField    = "altText"
	objectKeyPrefix     = "gallery/"
)

var (
	queries  *db.Queries
	store    media.ObjectStore
	initOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(d *db.DB, s media.ObjectStore) {
	if d == nil {
		return
	}
	initOnce.Do(func() {
		queries = d.Queries
		store = s
	})
}

// GET /api/gallery
func HandlePublicList(w http.ResponseWriter, r *http.Request) {
	rows, ok := listImages(w, r)
	if !ok {
		return
	}

	images := make([]models.PublicGalleryImage, 0, len(rows))
	for _, row := range rows {
		images = append(images, models.PublicGalleryImageFromDB(row))
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, images)
}

// GET /api/admin/imagenes
func HandleAdminList(w http.ResponseWriter, r *http.Request) {
	rows, ok := listImages(w, r)
	if !ok {
		return
	}

	images := make([]models.GalleryImage, 0, len(rows))
	for _, row := range rows {
		images = append(images, models.GalleryImageFromDB(row))
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, images)
}

func listImages(w http.ResponseWriter, r *http.Request) ([]db.GalleryImage, bool) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), galleryQueryTimeout)
	defer cancel()

	rows, err := queries.ListGalleryImages(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list gallery images")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load gallery")
		return nil, false
	}
	return rows, true
}

// POST /api/admin/imagenes
//
// Multipart upload. The binary is normalized to a bounded JPEG before it is
// pushed to the object host; the metadata row is written only after the host
// accepts the object.
func HandleUpload(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil || store == nil {
		logger.Error().Msg("Gallery handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Image file is required")
		return
	}

	file, header, err := r.FormFile(imageFormField)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		apiutil.WriteError(w, http.StatusBadRequest, "File must be an image")
		return
	}

	data, err := media.NormalizeImage(file)
	if err != nil {
		logger.Warn().Err(err).Str("filename", header.Filename).Msg("Rejected undecodable upload")
		apiutil.WriteError(w, http.StatusBadRequest, "File must be an image")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	key := objectKeyPrefix + uuid.New().String() + ".jpg"
	url, err := store.Put(ctx, key, data, "image/jpeg")
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Failed to upload image to object host")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	altText := sql.NullString{}
	if alt := strings.TrimSpace(r.FormValue(altTextFormField)); alt != "" {
		altText = sql.NullString{String: alt, Valid: true}
	}

	row, err := queries.CreateGalleryImage(ctx, db.CreateGalleryImageParams{
		Filename:   key,
		URL:        url,
		AltText:    altText,
		UploadedAt: time.Now().UTC(),
	})
	if err != nil {
		// The object is already on the host; try not to orphan it.
		if delErr := store.Delete(ctx, key); delErr != nil {
			logger.Error().Err(delErr).Str("key", key).Msg("Failed to clean up orphaned object")
		}
		logger.Error().Err(err).Str("key", key).Msg("Failed to persist gallery image")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to save image")
		return
	}

	logger.Info().Int64("image_id", row.ID).Str("key", key).Msg("Gallery image uploaded")
	_ = apiutil.WriteJSON(w, http.StatusCreated, models.GalleryImageFromDB(row))
}

// DELETE /api/admin/imagenes/{id}
//
// External deletion is best-effort; a failing host never blocks removal of
// the local record, the asset is simply orphaned.
func HandleDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		apiutil.WriteError(w, http.StatusBadRequest, "Image id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	row, err := queries.GetGalleryImage(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, http.StatusNotFound, "Image not found")
			return
		}
		logger.Error().Err(err).Int64("image_id", id).Msg("Failed to look up gallery image")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to delete image")
		return
	}

	if store != nil {
		if err := store.Delete(ctx, row.Filename); err != nil {
			logger.Warn().Err(err).Str("key", row.Filename).Msg("External image deletion failed, continuing")
		}
	}

	deleted, err := queries.DeleteGalleryImage(ctx, id)
	if err != nil {
		logger.Error().Err(err).Int64("image_id", id).Msg("Failed to delete gallery image record")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to delete image")
		return
	}
	if deleted == 0 {
		apiutil.WriteError(w, http.StatusNotFound, "Image not found")
		return
	}

	logger.Info().Int64("image_id", id).Msg("Gallery image deleted")
	w.WriteHeader(http.StatusNoContent)
}
