package home

import "github.com/villadaniela/fincaweb/internal/models"

type HomeData struct {
	Images       []models.PublicGalleryImage
	BusyRanges   []models.DateRange
	Testimonials []models.Testimonial
}
