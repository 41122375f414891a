package reviews

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/villadaniela/fincaweb/internal/db"
	"github.com/villadaniela/fincaweb/internal/testutil"
)

func setupReviewsTest(t *testing.T) *db.DB {
	t.Helper()

	d := testutil.NewTestDB(t)

	prevQueries := queries
	t.Cleanup(func() {
		queries = prevQueries
	})
	queries = d.Queries

	return d
}

func insertTestimonial(t *testing.T, d *db.DB, author string, rating int64, body, relative string) {
	t.Helper()

	_, err := d.ExecContext(context.Background(),
		"INSERT INTO testimonials (author_name, rating, body, relative_time) VALUES (?, ?, ?, ?)",
		author, rating, body, relative,
	)
	if err != nil {
		t.Fatalf("insert testimonial: %v", err)
	}
}

func TestListReviews(t *testing.T) {
	d := setupReviewsTest(t)
	insertTestimonial(t, d, "María G.", 5, "Un lugar maravilloso para descansar.", "hace un mes")
	insertTestimonial(t, d, "Carlos R.", 4, "Muy buena atención.", "hace dos semanas")

	req := httptest.NewRequest(http.MethodGet, "/api/reviews", nil)
	rec := httptest.NewRecorder()
	HandleListReviews(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var reviews []struct {
		AuthorName              string `json:"author_name"`
		Rating                  int64  `json:"rating"`
		Text                    string `json:"text"`
		RelativeTimeDescription string `json:"relative_time_description"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &reviews); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}
	// Newest first.
	if reviews[0].AuthorName != "Carlos R." {
		t.Errorf("expected newest review first, got %q", reviews[0].AuthorName)
	}
	if reviews[1].Rating != 5 {
		t.Errorf("expected rating 5, got %d", reviews[1].Rating)
	}
}

func TestListReviewsEmpty(t *testing.T) {
	setupReviewsTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/reviews", nil)
	rec := httptest.NewRecorder()
	HandleListReviews(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("expected empty array, got %q", body)
	}
}
