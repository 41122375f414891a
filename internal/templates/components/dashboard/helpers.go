package dashboard

import "github.com/villadaniela/fincaweb/internal/models"

func adminAlt(img models.GalleryImage) string {
	if img.AltText != nil && *img.AltText != "" {
		return *img.AltText
	}
	return img.Filename
}
