// internal/api/home/handlers.go
package home

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/villadaniela/fincaweb/internal/db"
	"github.com/villadaniela/fincaweb/internal/models"
	hometempl "github.com/villadaniela/fincaweb/internal/templates/components/home"
	"github.com/villadaniela/fincaweb/internal/templates/layouts"
)

const homeQueryTimeout = 5 * time.Second

var (
	queries  *db.Queries
	initOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(d *db.DB) {
	if d == nil {
		return
	}
	initOnce.Do(func() {
		queries = d.Queries
	})
}

// GET /
//
// The page degrades gracefully: a failing section renders empty instead of
// taking the whole page down.
func HandleHomePage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), homeQueryTimeout)
	defer cancel()

	data := hometempl.HomeData{}

	if rows, err := queries.ListGalleryImages(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to load gallery for home page")
	} else {
		for _, row := range rows {
			data.Images = append(data.Images, models.PublicGalleryImageFromDB(row))
		}
	}

	if rows, err := queries.ListBusyDateRanges(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to load busy ranges for home page")
	} else {
		for _, row := range rows {
			data.BusyRanges = append(data.BusyRanges, models.BusyDateRangeFromDB(row))
		}
	}

	if rows, err := queries.ListTestimonials(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to load testimonials for home page")
	} else {
		for _, row := range rows {
			data.Testimonials = append(data.Testimonials, models.TestimonialFromDB(row))
		}
	}

	page := layouts.Base(hometempl.HomePage(data))
	if err := page.Render(r.Context(), w); err != nil {
		logger.Error().Err(err).Msg("Failed to render home page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
