// internal/api/calendar/handlers.go
package calendar

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

const rangeQueryTimeout = 5 * time.Second

var (
	database *db.DB
	queries  *db.Queries
	initOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(d *db.DB) {
	if d == nil {
		return
	}
	initOnce.Do(func() {
		database = d
		queries = d.Queries
	})
}

// GET /api/availability and GET /api/admin/fechas-ocupadas
//
// Both routes serve the same collection; the admin variant sits behind the
// route guard.
func HandleListRanges(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), rangeQueryTimeout)
	defer cancel()

	rows, err := queries.ListBusyDateRanges(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list busy date ranges")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load busy dates")
		return
	}

	ranges := make([]models.DateRange, 0, len(rows))
	for _, row := range rows {
		ranges = append(ranges, models.BusyDateRangeFromDB(row))
	}

	_ = apiutil.WriteJSON(w, http.StatusOK, ranges)
}

// POST /api/admin/fechas-ocupadas
//
// Replaces the entire busy-range collection. The submission is validated
// before any mutation; the swap happens inside one transaction so readers
// never observe a half-replaced calendar.
func HandleReplaceRanges(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var payload models.RangePayload
	if err := apiutil.DecodeJSON(r, &payload); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, `expected an object with a "ranges" array`)
		return
	}

	ranges, err := payload.ParseRangePayload()
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), rangeQueryTimeout)
	defer cancel()

	err = database.RunInTx(ctx, func(tx *db.DB) error {
		if err := tx.Queries.DeleteAllBusyDateRanges(ctx); err != nil {
			return err
		}
		for _, dr := range ranges {
			if err := tx.Queries.CreateBusyDateRange(ctx, dr.Start, dr.End); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if apiutil.IsSQLiteConstraintViolation(err) {
			logger.Warn().Err(err).Msg("Busy range replacement hit a constraint")
			apiutil.WriteError(w, http.StatusConflict, "Busy dates could not be saved, reload and retry")
			return
		}
		logger.Error().Err(err).Msg("Failed to replace busy date ranges")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to save busy dates")
		return
	}

	logger.Info().Int("count", len(ranges)).Msg("Busy date ranges replaced")
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Fechas guardadas"})
}
