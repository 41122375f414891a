package auth

import (
	"database/sql"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/villadaniela/fincaweb/internal/api/apiutil"
	"github.com/villadaniela/fincaweb/internal/db"
	"github.com/villadaniela/fincaweb/internal/email"
	"github.com/villadaniela/fincaweb/internal/ratelimit"
	authtempl "github.com/villadaniela/fincaweb/internal/templates/components/auth"
	"github.com/villadaniela/fincaweb/internal/templates/layouts"
)

const (
	loginTokenTTL      = 15 * time.Minute
	defaultCallbackURL = "/dashboard"
)

// Options carries the environment the auth handlers need beyond the database.
type Options struct {
	AppName     string
	BaseURL     string
	Environment string
	SecretKey   string
	TrustProxy  bool
}

var (
	database    *db.DB
	queries     *db.Queries
	sender      email.EmailSender
	opts        Options
	limiter     *rate.Limiter
	linkLimiter *ratelimit.Limiter
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(d *db.DB, s email.EmailSender, o Options) {
	database = d
	if d != nil {
		queries = d.Queries
	}
	sender = s
	opts = o
	limiter = rate.NewLimiter(rate.Limit(5), 10) // More restrictive for auth
	linkLimiter = ratelimit.New(nil)
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CallbackURL string `json:"callbackUrl"`
}

type magicLinkRequest struct {
	Email       string `json:"email"`
	CallbackURL string `json:"callbackUrl"`
}

// HandleLoginPage renders the login form. An already signed-in visitor is
// sent straight to the dashboard.
func HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if user, err := UserFromRequest(w, r); err == nil && user != nil {
		http.Redirect(w, r, defaultCallbackURL, http.StatusSeeOther)
		return
	}

	data := authtempl.LoginPageData{
		CallbackURL: sanitizeCallbackURL(r.URL.Query().Get("callbackUrl")),
		HasError:    r.URL.Query().Get("error") != "",
	}
	page := layouts.Base(authtempl.LoginPage(data))
	if err := page.Render(r.Context(), w); err != nil {
		logger.Error().Err(err).Msg("Failed to render login page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// HandleVerifyRequestPage renders the "check your email" page shown after a
// login link was requested.
func HandleVerifyRequestPage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	page := layouts.Base(authtempl.VerifyRequestPage())
	if err := page.Render(r.Context(), w); err != nil {
		logger.Error().Err(err).Msg("Failed to render verify-request page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// HandleLogin authenticates an email/password pair and issues a session.
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Auth handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !limiter.Allow() {
		apiutil.WriteError(w, http.StatusTooManyRequests, "Too many login attempts, try again shortly")
		return
	}

	req, err := decodeCredentialsRequest(r)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if req.Email == "" || req.Password == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := VerifyCredentials(r.Context(), queries, req.Email, req.Password)
	if err != nil {
		logger.Error().Err(err).Msg("Credential verification failed")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		// Uniform rejection: unknown email and wrong password look the same.
		apiutil.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := CreateSession(r.Context(), w, user.ID); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to create session")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	callbackURL := sanitizeCallbackURL(req.CallbackURL)
	logger.Info().Int64("user_id", user.ID).Msg("Credential login succeeded")

	if apiutil.IsJSONRequest(r) {
		_ = apiutil.WriteJSON(w, http.StatusOK, map[string]string{
			"message":     "Signed in",
			"callbackUrl": callbackURL,
		})
		return
	}
	http.Redirect(w, r, callbackURL, http.StatusSeeOther)
}

// HandleMagicLink requests a single-use login link by email. The response is
// identical whether or not the account exists.
func HandleMagicLink(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Auth handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	req, err := decodeMagicLinkRequest(r)
	if err != nil || strings.TrimSpace(req.Email) == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "Email is required")
		return
	}
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	ip := ratelimit.GetClientIP(r, opts.TrustProxy)
	if result := linkLimiter.CheckLinkSend(emailAddr, ip); !result.Allowed {
		ratelimit.LogRateLimitExceeded("login_link", emailAddr, ip, result.Reason)
		w.Header().Set("Retry-After", retryAfterSeconds(result.RetryAfter))
		apiutil.WriteError(w, http.StatusTooManyRequests, "Too many requests, try again later")
		return
	}
	linkLimiter.RecordLinkSend(emailAddr, ip)

	callbackURL := sanitizeCallbackURL(req.CallbackURL)
	if err := sendLoginLink(r, emailAddr, callbackURL); err != nil {
		logger.Error().Err(err).Str("identifier", ratelimit.SanitizeIdentifier(emailAddr)).
			Msg("Failed to issue login link")
	}

	if apiutil.IsJSONRequest(r) {
		_ = apiutil.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "If the account exists, a login link is on its way",
		})
		return
	}
	http.Redirect(w, r, "/auth/verify-request", http.StatusSeeOther)
}

// sendLoginLink creates and emails a login token for an existing account.
// For unknown emails it does nothing and reports no error.
func sendLoginLink(r *http.Request, emailAddr, callbackURL string) error {
	_, err := queries.GetUserByEmail(r.Context(), emailAddr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	token, err := newSessionToken()
	if err != nil {
		return err
	}

	if err := queries.CreateLoginToken(r.Context(), db.CreateLoginTokenParams{
		TokenHash: hashSessionToken(token),
		Email:     emailAddr,
		ExpiresAt: time.Now().UTC().Add(loginTokenTTL),
	}); err != nil {
		return err
	}

	link := opts.BaseURL + "/api/auth/verify?token=" + url.QueryEscape(token) +
		"&callbackUrl=" + url.QueryEscape(callbackURL)
	return email.SendLoginLink(r.Context(), sender, emailAddr, opts.AppName, link, loginTokenTTL)
}

// HandleVerify consumes a login-link token and issues a session. Any failure
// lands back on the login page without detail.
func HandleVerify(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Auth handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	token := r.URL.Query().Get("token")
	callbackURL := sanitizeCallbackURL(r.URL.Query().Get("callbackUrl"))
	if token == "" {
		http.Redirect(w, r, "/login?error=Verification", http.StatusSeeOther)
		return
	}

	var userID int64
	err := database.RunInTx(r.Context(), func(tx *db.DB) error {
		record, err := tx.Queries.GetLoginToken(r.Context(), hashSessionToken(token))
		if err != nil {
			return err
		}
		if record.ConsumedAt.Valid || record.ExpiresAt.Before(time.Now()) {
			return errors.New("login token no longer valid")
		}

		updated, err := tx.Queries.MarkLoginTokenConsumed(r.Context(), record.TokenHash, time.Now().UTC())
		if err != nil {
			return err
		}
		if updated == 0 {
			return errors.New("login token already consumed")
		}

		user, err := tx.Queries.GetUserByEmail(r.Context(), record.Email)
		if err != nil {
			return err
		}
		userID = user.ID
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Login link verification failed")
		http.Redirect(w, r, "/login?error=Verification", http.StatusSeeOther)
		return
	}

	if err := CreateSession(r.Context(), w, userID); err != nil {
		logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to create session")
		http.Redirect(w, r, "/login?error=Verification", http.StatusSeeOther)
		return
	}

	logger.Info().Int64("user_id", userID).Msg("Login link verified")
	http.Redirect(w, r, callbackURL, http.StatusSeeOther)
}

// HandleLogout clears the current session.
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	ClearSession(r.Context(), w, r)

	if apiutil.IsJSONRequest(r) {
		_ = apiutil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func decodeCredentialsRequest(r *http.Request) (credentialsRequest, error) {
	if apiutil.IsJSONRequest(r) {
		var req credentialsRequest
		return req, apiutil.DecodeJSON(r, &req)
	}

	if err := r.ParseForm(); err != nil {
		return credentialsRequest{}, err
	}
	return credentialsRequest{
		Email:       r.FormValue("email"),
		Password:    r.FormValue("password"),
		CallbackURL: r.FormValue("callbackUrl"),
	}, nil
}

func decodeMagicLinkRequest(r *http.Request) (magicLinkRequest, error) {
	if apiutil.IsJSONRequest(r) {
		var req magicLinkRequest
		return req, apiutil.DecodeJSON(r, &req)
	}

	if err := r.ParseForm(); err != nil {
		return magicLinkRequest{}, err
	}
	return magicLinkRequest{
		Email:       r.FormValue("email"),
		CallbackURL: r.FormValue("callbackUrl"),
	}, nil
}

// sanitizeCallbackURL only allows same-site relative paths.
func sanitizeCallbackURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return defaultCallbackURL
	}
	return raw
}

func retryAfterSeconds(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
