package domain

import "time"

// ParentCategory is a top-level grouping on the marketplace home screen.
type ParentCategory struct {
	CategoryID   int64
	CategoryKey  string
	CategoryName string
	CategoryIcon string
	IsLive       bool
	SortOrder    int
	CreatedAt    time.Time
}

// ServiceCategory is a concrete service under a parent category, e.g.
// wash-and-fold under laundry.
type ServiceCategory struct {
	ServiceID              int64
	ParentCategoryID       int64
	ServiceKey             string
	ServiceName            string
	ServiceDescription     string
	EstimatedDurationHours *int
	CreatedAt              time.Time
}
