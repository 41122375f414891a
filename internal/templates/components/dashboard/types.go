package dashboard

import "github.com/villadaniela/fincaweb/internal/models"

type DashboardData struct {
	UserName   string
	BusyRanges []models.DateRange
	Images     []models.GalleryImage
}
