package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/villadaniela/fincaweb/internal/db"
)

const cleanupJobTimeout = 2 * time.Minute

// RegisterCleanupJobs registers the hourly pruning of expired sessions and
// unconsumed login tokens. Expired rows are also rejected at read time, so
// this job only keeps the tables from growing without bound.
func RegisterCleanupJobs(database *db.DB) error {
	if database == nil {
		return fmt.Errorf("cleanup jobs require database")
	}

	jobName := "auth_cleanup"
	cronExpr := "0 * * * *"
	jobLogger := log.With().
		Str("component", "auth_cleanup_job").
		Str("job_name", jobName).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		now := time.Now().UTC()

		sessions, err := database.Queries.DeleteExpiredSessions(ctx, now)
		if err != nil {
			jobLogger.Error().Err(err).Msg("Failed to prune expired sessions")
		}

		tokens, err := database.Queries.DeleteExpiredLoginTokens(ctx, now)
		if err != nil {
			jobLogger.Error().Err(err).Msg("Failed to prune expired login tokens")
		}

		if sessions > 0 || tokens > 0 {
			jobLogger.Info().
				Int64("sessions", sessions).
				Int64("login_tokens", tokens).
				Msg("Pruned expired auth rows")
		}
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add auth cleanup job: %w", err)
	}

	jobLogger.Info().Msg("Auth cleanup job registered")
	return nil
}
