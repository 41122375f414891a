// internal/db/queries.go
package db

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so queries can run inside or
// outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

type User struct {
	ID             int64
	Email          string
	Name           sql.NullString
	Image          sql.NullString
	HashedPassword sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Session struct {
	TokenHash string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

type LoginToken struct {
	TokenHash  string
	Email      string
	ExpiresAt  time.Time
	ConsumedAt sql.NullTime
	CreatedAt  time.Time
}

type BusyDateRange struct {
	ID        int64
	StartDate time.Time
	EndDate   time.Time
}

type GalleryImage struct {
	ID         int64
	Filename   string
	URL        string
	AltText    sql.NullString
	UploadedAt time.Time
}

type Testimonial struct {
	ID           int64
	AuthorName   string
	Rating       int64
	Body         string
	RelativeTime sql.NullString
	CreatedAt    time.Time
}

const getUserByEmail = `
SELECT id, email, name, image, hashed_password, created_at, updated_at
FROM users WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &u.HashedPassword, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByID = `
SELECT id, email, name, image, hashed_password, created_at, updated_at
FROM users WHERE id = ?`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &u.HashedPassword, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

type CreateUserParams struct {
	Email          string
	Name           sql.NullString
	HashedPassword sql.NullString
}

const createUser = `
INSERT INTO users (email, name, hashed_password) VALUES (?, ?, ?)`

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createUser, arg.Email, arg.Name, arg.HashedPassword)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type CreateSessionParams struct {
	TokenHash string
	UserID    int64
	ExpiresAt time.Time
}

const createSession = `
INSERT INTO sessions (token_hash, user_id, expires_at) VALUES (?, ?, ?)`

func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) error {
	_, err := q.db.ExecContext(ctx, createSession, arg.TokenHash, arg.UserID, arg.ExpiresAt)
	return err
}

const getSession = `
SELECT token_hash, user_id, expires_at, created_at FROM sessions WHERE token_hash = ?`

func (q *Queries) GetSession(ctx context.Context, tokenHash string) (Session, error) {
	row := q.db.QueryRowContext(ctx, getSession, tokenHash)
	var s Session
	err := row.Scan(&s.TokenHash, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	return s, err
}

const deleteSession = `DELETE FROM sessions WHERE token_hash = ?`

func (q *Queries) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := q.db.ExecContext(ctx, deleteSession, tokenHash)
	return err
}

const deleteSessionsForUser = `DELETE FROM sessions WHERE user_id = ?`

func (q *Queries) DeleteSessionsForUser(ctx context.Context, userID int64) error {
	_, err := q.db.ExecContext(ctx, deleteSessionsForUser, userID)
	return err
}

const deleteExpiredSessions = `DELETE FROM sessions WHERE expires_at <= ?`

func (q *Queries) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpiredSessions, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type CreateLoginTokenParams struct {
	TokenHash string
	Email     string
	ExpiresAt time.Time
}

const createLoginToken = `
INSERT INTO login_tokens (token_hash, email, expires_at) VALUES (?, ?, ?)`

func (q *Queries) CreateLoginToken(ctx context.Context, arg CreateLoginTokenParams) error {
	_, err := q.db.ExecContext(ctx, createLoginToken, arg.TokenHash, arg.Email, arg.ExpiresAt)
	return err
}

const getLoginToken = `
SELECT token_hash, email, expires_at, consumed_at, created_at
FROM login_tokens WHERE token_hash = ?`

func (q *Queries) GetLoginToken(ctx context.Context, tokenHash string) (LoginToken, error) {
	row := q.db.QueryRowContext(ctx, getLoginToken, tokenHash)
	var t LoginToken
	err := row.Scan(&t.TokenHash, &t.Email, &t.ExpiresAt, &t.ConsumedAt, &t.CreatedAt)
	return t, err
}

const markLoginTokenConsumed = `
UPDATE login_tokens SET consumed_at = ? WHERE token_hash = ? AND consumed_at IS NULL`

func (q *Queries) MarkLoginTokenConsumed(ctx context.Context, tokenHash string, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, markLoginTokenConsumed, now, tokenHash)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteExpiredLoginTokens = `DELETE FROM login_tokens WHERE expires_at <= ?`

func (q *Queries) DeleteExpiredLoginTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpiredLoginTokens, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listBusyDateRanges = `
SELECT id, start_date, end_date FROM busy_date_ranges ORDER BY start_date ASC, id ASC`

func (q *Queries) ListBusyDateRanges(ctx context.Context) ([]BusyDateRange, error) {
	rows, err := q.db.QueryContext(ctx, listBusyDateRanges)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranges []BusyDateRange
	for rows.Next() {
		var r BusyDateRange
		if err := rows.Scan(&r.ID, &r.StartDate, &r.EndDate); err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, rows.Err()
}

const deleteAllBusyDateRanges = `DELETE FROM busy_date_ranges`

func (q *Queries) DeleteAllBusyDateRanges(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllBusyDateRanges)
	return err
}

const createBusyDateRange = `
INSERT INTO busy_date_ranges (start_date, end_date) VALUES (?, ?)`

func (q *Queries) CreateBusyDateRange(ctx context.Context, start, end time.Time) error {
	_, err := q.db.ExecContext(ctx, createBusyDateRange, start, end)
	return err
}

const listGalleryImages = `
SELECT id, filename, url, alt_text, uploaded_at
FROM gallery_images ORDER BY uploaded_at DESC, id DESC`

func (q *Queries) ListGalleryImages(ctx context.Context) ([]GalleryImage, error) {
	rows, err := q.db.QueryContext(ctx, listGalleryImages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []GalleryImage
	for rows.Next() {
		var img GalleryImage
		if err := rows.Scan(&img.ID, &img.Filename, &img.URL, &img.AltText, &img.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

const getGalleryImage = `
SELECT id, filename, url, alt_text, uploaded_at FROM gallery_images WHERE id = ?`

func (q *Queries) GetGalleryImage(ctx context.Context, id int64) (GalleryImage, error) {
	row := q.db.QueryRowContext(ctx, getGalleryImage, id)
	var img GalleryImage
	err := row.Scan(&img.ID, &img.Filename, &img.URL, &img.AltText, &img.UploadedAt)
	return img, err
}

type CreateGalleryImageParams struct {
	Filename   string
	URL        string
	AltText    sql.NullString
	UploadedAt time.Time
}

const createGalleryImage = `
INSERT INTO gallery_images (filename, url, alt_text, uploaded_at) VALUES (?, ?, ?, ?)`

func (q *Queries) CreateGalleryImage(ctx context.Context, arg CreateGalleryImageParams) (GalleryImage, error) {
	res, err := q.db.ExecContext(ctx, createGalleryImage, arg.Filename, arg.URL, arg.AltText, arg.UploadedAt)
	if err != nil {
		return GalleryImage{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return GalleryImage{}, err
	}
	return GalleryImage{
		ID:         id,
		Filename:   arg.Filename,
		URL:        arg.URL,
		AltText:    arg.AltText,
		UploadedAt: arg.UploadedAt,
	}, nil
}

const deleteGalleryImage = `DELETE FROM gallery_images WHERE id = ?`

func (q *Queries) DeleteGalleryImage(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteGalleryImage, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listTestimonials = `
SELECT id, author_name, rating, body, relative_time, created_at
FROM testimonials ORDER BY created_at DESC, id DESC`

func (q *Queries) ListTestimonials(ctx context.Context) ([]Testimonial, error) {
	rows, err := q.db.QueryContext(ctx, listTestimonials)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var testimonials []Testimonial
	for rows.Next() {
		var t Testimonial
		if err := rows.Scan(&t.ID, &t.AuthorName, &t.Rating, &t.Body, &t.RelativeTime, &t.CreatedAt); err != nil {
			return nil, err
		}
		testimonials = append(testimonials, t)
	}
	return testimonials, rows.Err()
}
