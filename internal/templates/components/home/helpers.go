package home

import (
	"strings"

	"github.com/villadaniela/fincaweb/internal/models"
)

func galleryAlt(img models.PublicGalleryImage) string {
	if img.AltText != nil && *img.AltText != "" {
		return *img.AltText
	}
	return "Finca Villa Daniela"
}

func formatRange(r models.DateRange) string {
	start := r.Start.Format("02/01/2006")
	end := r.End.Format("02/01/2006")
	if start == end {
		return start
	}
	return start + " – " + end
}

func ratingStars(rating int64) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", int(rating)) + strings.Repeat("☆", int(5-rating))
}
