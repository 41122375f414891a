// internal/api/dashboard/handlers.go
package dashboard

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/villadaniela/fincaweb/internal/api/authz"
	"github.com/villadaniela/fincaweb/internal/db"
	"github.com/villadaniela/fincaweb/internal/models"
	dashtempl "github.com/villadaniela/fincaweb/internal/templates/components/dashboard"
	"github.com/villadaniela/fincaweb/internal/templates/layouts"
)

const dashboardQueryTimeout = 5 * time.Second

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

// GET /dashboard
//
// The route guard guarantees a session; the handler still tolerates a missing
// user in context rather than panicking.
func HandleDashboardPage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dashboardQueryTimeout)
	defer cancel()

	data := dashtempl.DashboardData{}
	if user := authz.UserFromContext(r.Context()); user != nil {
		data.UserName = user.Name
		if data.UserName == "" {
			data.UserName = user.Email
		}
	}

	ranges, err := queries.ListBusyDateRanges(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load busy ranges for dashboard")
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}
	for _, row := range ranges {
		data.BusyRanges = append(data.BusyRanges, models.BusyDateRangeFromDB(row))
	}

	images, err := queries.ListGalleryImages(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load gallery for dashboard")
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}
	for _, row := range images {
		data.Images = append(data.Images, models.GalleryImageFromDB(row))
	}

	page := layouts.Base(dashtempl.DashboardPage(data))
	if err := page.Render(r.Context(), w); err != nil {
		logger.Error().Err(err).Msg("Failed to render dashboard page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
