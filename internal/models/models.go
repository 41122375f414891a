// internal/models/models.go
package models

import (
	"time"

	"github.com/villadaniela/fincaweb/internal/db"
)

// GalleryImage is the API-facing shape of a media catalog record.
type GalleryImage struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	AltText    *string   `json:"altText"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func GalleryImageFromDB(row db.GalleryImage) GalleryImage {
	img := GalleryImage{
		ID:         row.ID,
		Filename:   row.Filename,
		URL:        row.URL,
		UploadedAt: row.UploadedAt.UTC(),
	}
	if row.AltText.Valid {
		alt := row.AltText.String
		img.AltText = &alt
	}
	return img
}

// PublicGalleryImage is the reduced shape served to the public gallery.
type PublicGalleryImage struct {
	ID       int64   `json:"id"`
	URL      string  `json:"url"`
	AltText  *string `json:"altText"`
	Filename string  `json:"filename"`
}

func PublicGalleryImageFromDB(row db.GalleryImage) PublicGalleryImage {
	img := PublicGalleryImage{
		ID:       row.ID,
		URL:      row.URL,
		Filename: row.Filename,
	}
	if row.AltText.Valid {
		alt := row.AltText.String
		img.AltText = &alt
	}
	return img
}

// Testimonial mirrors the review shape the public site renders.
type Testimonial struct {
	AuthorName              string `json:"author_name"`
	Rating                  int64  `json:"rating"`
	Text                    string `json:"text"`
	RelativeTimeDescription string `json:"relative_time_description"`
}

func TestimonialFromDB(row db.Testimonial) Testimonial {
	t := Testimonial{
		AuthorName: row.AuthorName,
		Rating:     row.Rating,
		Text:       row.Body,
	}
	if row.RelativeTime.Valid {
		t.RelativeTimeDescription = row.RelativeTime.String
	}
	return t
}

func BusyDateRangeFromDB(row db.BusyDateRange) DateRange {
	return DateRange{Start: row.StartDate.UTC(), End: row.EndDate.UTC()}
}
