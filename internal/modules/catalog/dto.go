package catalog

type CreateVenueRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Address     string `json:"address" binding:"required"`
	City        string `json:"city"`
	Phone       string `json:"phone"`
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
}

type CreateSportRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

type CreateCourtRequest struct {
	VenueID     int64   `json:"venue_id" binding:"required"`
	SportID     int64   `json:"sport_id" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Code        string  `json:"code"`
	Description string  `json:"description"`
	SurfaceType string  `json:"surface_type"`
	HourlyRate  float64 `json:"hourly_rate" binding:"required,gte=0"`
}

type UpdateCourtRequest struct {
	Name        *string  `json:"name"`
	Code        *string  `json:"code"`
	Description *string  `json:"description"`
	SurfaceType *string  `json:"surface_type"`
	HourlyRate  *float64 `json:"hourly_rate"`
}

type CourtListQuery struct {
	VenueID  int64   `form:"venue_id"`
	SportID  int64   `form:"sport_id"`
	MinPrice float64 `form:"min_price"`
	MaxPrice float64 `form:"max_price"`
	Search   string  `form:"search"`
	Limit    int     `form:"limit"`
	Offset   int     `form:"offset"`
}
