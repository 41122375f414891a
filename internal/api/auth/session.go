package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/villadaniela/fincaweb/internal/api/authz"
	"github.com/villadaniela/fincaweb/internal/db"
)

const (
	sessionCookieName = "fincaweb_session"
	sessionTTL        = 8 * time.Hour
	sessionTokenBytes = 32
)

var errNotInitialized = errors.New("auth handlers not initialized")

func isSecureCookie() bool {
	return opts.Environment != "development"
}

// CreateSession issues a fresh session for userID, replacing any existing
// sessions for that user, and sets the session cookie. Only a hash of the
// token is persisted.
func CreateSession(ctx context.Context, w http.ResponseWriter, userID int64) error {
	if w == nil {
		return errors.New("session requires response writer")
	}
	if database == nil {
		return errNotInitialized
	}

	token, err := newSessionToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().UTC().Add(sessionTTL)
	err = database.RunInTx(ctx, func(tx *db.DB) error {
		if err := tx.Queries.DeleteSessionsForUser(ctx, userID); err != nil {
			return err
		}
		return tx.Queries.CreateSession(ctx, db.CreateSessionParams{
			TokenHash: hashSessionToken(token),
			UserID:    userID,
			ExpiresAt: expiresAt,
		})
	})
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureCookie(),
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
		MaxAge:   int(sessionTTL.Seconds()),
	})

	return nil
}

// ClearSession deletes the session row referenced by the request cookie, if
// any, and expires the cookie.
func ClearSession(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if r == nil {
		ClearSessionCookie(w)
		return
	}

	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && queries != nil {
		_ = queries.DeleteSession(ctx, hashSessionToken(cookie.Value))
	}

	ClearSessionCookie(w)
}

func ClearSessionCookie(w http.ResponseWriter) {
	if w == nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureCookie(),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// UserFromRequest resolves the current session to a minimal identity. The
// lookup hits the database on every call; nothing is cached across requests.
// A missing or invalid cookie yields (nil, nil).
func UserFromRequest(w http.ResponseWriter, r *http.Request) (*authz.AuthUser, error) {
	if r == nil {
		return nil, nil
	}
	if queries == nil {
		return nil, errNotInitialized
	}

	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}

	tokenHash := hashSessionToken(cookie.Value)
	session, err := queries.GetSession(r.Context(), tokenHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			ClearSessionCookie(w)
			return nil, nil
		}
		return nil, err
	}

	if session.ExpiresAt.Before(time.Now()) {
		_ = queries.DeleteSession(r.Context(), tokenHash)
		ClearSessionCookie(w)
		return nil, nil
	}

	user, err := queries.GetUserByID(r.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = queries.DeleteSession(r.Context(), tokenHash)
			ClearSessionCookie(w)
			return nil, nil
		}
		return nil, err
	}

	return authUserFromRow(user), nil
}

func authUserFromRow(user db.User) *authz.AuthUser {
	return &authz.AuthUser{
		ID:    user.ID,
		Name:  user.Name.String,
		Email: user.Email,
		Image: user.Image.String,
	}
}

func newSessionToken() (string, error) {
	token := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(token); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(token), nil
}

// hashSessionToken keys the digest with the app secret so a leaked database
// alone is not enough to forge lookup keys.
func hashSessionToken(token string) string {
	mac := hmac.New(sha256.New, []byte(opts.SecretKey))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
