package models

import "time"

// Plant is a catalog entry for a rentable plant. Customers only read it;
// mutations go through the admin CRUD.
type Plant struct {
	ID             int
	Name           string
	ScientificName string
	Description    string
	Category       string // Indoor, Outdoor, Flowering, Foliage, Succulent, Herb
	Size           string // Small, Medium, Large, Extra Large
	PriceDaily     float64
	PriceWeekly    float64
	PriceMonthly   float64
	CareLight      string
	CareWater      string
	CareHumidity   string
	InStock        bool
	Quantity       int
	IsActive       bool
	CreatedAt      time.Time
}

// DummyPlant receives plant data from a JSON request before conversion to Plant.
type DummyPlant struct {
	Name           string  `json:"name" validate:"required"`
	ScientificName string  `json:"scientific_name,omitempty" validate:"omitempty"`
	Description    string  `json:"description" validate:"required"`
	Category       string  `json:"category" validate:"required,oneof=Indoor Outdoor Flowering Foliage Succulent Herb"`
	Size           string  `json:"size" validate:"required,oneof=Small Medium Large 'Extra Large'"`
	PriceDaily     float64 `json:"price_daily" validate:"required,gt=0"`
	PriceWeekly    float64 `json:"price_weekly" validate:"required,gt=0"`
	PriceMonthly   float64 `json:"price_monthly" validate:"required,gt=0"`
	CareLight      string  `json:"care_light,omitempty" validate:"omitempty,oneof=Low Medium High"`
	CareWater      string  `json:"care_water,omitempty" validate:"omitempty,oneof=Low Medium High"`
	CareHumidity   string  `json:"care_humidity,omitempty" validate:"omitempty,oneof=Low Medium High"`
	InStock        bool    `json:"in_stock"`
	Quantity       int     `json:"quantity" validate:"gte=0"`
}

// PlantFilter carries the catalog listing parameters after parsing the query string.
type PlantFilter struct {
	Category  string
	Size      string
	Search    string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string // created_at, price or name
	SortOrder string // asc or desc
	Page      int
	Limit     int
}
