package auth

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/villadaniela/fincaweb/internal/db"
	"github.com/villadaniela/fincaweb/internal/testutil"
)

func setupSessionTest(t *testing.T) *db.DB {
	t.Helper()

	database := testutil.NewTestDB(t)
	resetHandlerState(t)
	InitHandlers(database, nil, Options{
		AppName:     "Finca Villa Daniela",
		BaseURL:     "http://localhost:8080",
		Environment: "development",
		SecretKey:   "test-secret-key",
	})

	return database
}

func createTestUser(t *testing.T, database *db.DB, emailAddr, password string) int64 {
	t.Helper()

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	id, err := database.Queries.CreateUser(context.Background(), db.CreateUserParams{
		Email:          emailAddr,
		Name:           sql.NullString{String: "Admin", Valid: true},
		HashedPassword: sql.NullString{String: hash, Valid: true},
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func requestWithSessionCookie(rec *httptest.ResponseRecorder, target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			req.AddCookie(c)
		}
	}
	return req
}

func TestCreateSessionSetsCookieAndResolvesUser(t *testing.T) {
	database := setupSessionTest(t)
	userID := createTestUser(t, database, "admin@test.com", "secret123")

	rec := httptest.NewRecorder()
	if err := CreateSession(context.Background(), rec, userID); err != nil {
		t.Fatalf("create session: %v", err)
	}

	cookies := rec.Result().Cookies()
	var sessionCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == sessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	req := requestWithSessionCookie(rec, "/dashboard")
	user, err := UserFromRequest(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("resolve user: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.ID != userID {
		t.Errorf("expected user id %d, got %d", userID, user.ID)
	}
	if user.Email != "admin@test.com" {
		t.Errorf("expected email admin@test.com, got %q", user.Email)
	}
}

func TestCreateSessionReplacesPreviousSession(t *testing.T) {
	database := setupSessionTest(t)
	userID := createTestUser(t, database, "admin@test.com", "secret123")

	first := httptest.NewRecorder()
	if err := CreateSession(context.Background(), first, userID); err != nil {
		t.Fatalf("create first session: %v", err)
	}
	second := httptest.NewRecorder()
	if err := CreateSession(context.Background(), second, userID); err != nil {
		t.Fatalf("create second session: %v", err)
	}

	// The first cookie no longer maps to a session row.
	req := requestWithSessionCookie(first, "/dashboard")
	user, err := UserFromRequest(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("resolve user: %v", err)
	}
	if user != nil {
		t.Error("expected first session to be invalidated")
	}

	req = requestWithSessionCookie(second, "/dashboard")
	user, err = UserFromRequest(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("resolve user: %v", err)
	}
	if user == nil {
		t.Error("expected second session to remain valid")
	}
}

func TestUserFromRequestWithoutCookie(t *testing.T) {
	setupSessionTest(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	user, err := UserFromRequest(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Error("expected nil user without a cookie")
	}
}

func TestUserFromRequestExpiredSession(t *testing.T) {
	database := setupSessionTest(t)
	userID := createTestUser(t, database, "admin@test.com", "secret123")

	token, err := newSessionToken()
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	err = database.Queries.CreateSession(context.Background(), db.CreateSessionParams{
		TokenHash: hashSessionToken(token),
		UserID:    userID,
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("insert expired session: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})

	rec := httptest.NewRecorder()
	user, err := UserFromRequest(rec, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Error("expected expired session to yield nil user")
	}

	// The expired row must be gone.
	_, err = database.Queries.GetSession(context.Background(), hashSessionToken(token))
	if err == nil {
		t.Error("expected expired session row to be deleted")
	}
}

func TestClearSessionDeletesRow(t *testing.T) {
	database := setupSessionTest(t)
	userID := createTestUser(t, database, "admin@test.com", "secret123")

	rec := httptest.NewRecorder()
	if err := CreateSession(context.Background(), rec, userID); err != nil {
		t.Fatalf("create session: %v", err)
	}

	req := requestWithSessionCookie(rec, "/api/auth/logout")
	ClearSession(context.Background(), httptest.NewRecorder(), req)

	req = requestWithSessionCookie(rec, "/dashboard")
	user, err := UserFromRequest(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Error("expected session to be cleared")
	}
}

func TestSessionTokenIsNotStoredInPlaintext(t *testing.T) {
	database := setupSessionTest(t)
	userID := createTestUser(t, database, "admin@test.com", "secret123")

	rec := httptest.NewRecorder()
	if err := CreateSession(context.Background(), rec, userID); err != nil {
		t.Fatalf("create session: %v", err)
	}

	var token string
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			token = c.Value
		}
	}
	if token == "" {
		t.Fatal("expected session cookie")
	}

	// Looking up by the raw token must miss; only the hash is persisted.
	if _, err := database.Queries.GetSession(context.Background(), token); err == nil {
		t.Error("raw token should not match a stored session")
	}
	if _, err := database.Queries.GetSession(context.Background(), hashSessionToken(token)); err != nil {
		t.Errorf("hashed token should match a stored session: %v", err)
	}
}
