package model

import "time"

type Product struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	Description   string    `json:"description"`
	ImageFilename string    `json:"imageFilename,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ProductFilter narrows and orders a product listing.
type ProductFilter struct {
	Query    string // case-insensitive match on name, brand, category, description
	Category string
	Brand    string
	Sort     string // id, name, brand, category, price, createdAt
	Order    string // asc or desc
	Page     int    // 1-based; 0 disables paging
	Limit    int
}

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

var ProductSortFields = map[string]bool{
	"id":        true,
	"name":      true,
	"brand":     true,
	"category":  true,
	"price":     true,
	"createdAt": true,
}

// Window returns the [start, end) slice bounds for a result set of size total.
func (f ProductFilter) Window(total int) (int, int) {
	if f.Page <= 0 && f.Limit <= 0 {
		return 0, total
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	// (page-1)*limit can overflow for huge pages; compare page counts instead.
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	if page > pages {
		return total, total
	}
	start := (page - 1) * limit
	end := total
	if limit < total-start {
		end = start + limit
	}
	return start, end
}
