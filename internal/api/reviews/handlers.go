// internal/api/reviews/handlers.go
package reviews

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/villadaniela/fincaweb/internal/api/apiutil"
	"github.com/villadaniela/fincaweb/internal/db"
	"github.com/villadaniela/fincaweb/internal/models"
)

const reviewsQueryTimeout = 5 * time.Second

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

// GET /api/reviews
func HandleListReviews(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reviewsQueryTimeout)
	defer cancel()

	rows, err := queries.ListTestimonials(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list testimonials")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load reviews")
		return
	}

	reviews := make([]models.Testimonial, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, models.TestimonialFromDB(row))
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, reviews)
}
