package pagination

const (
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 25
	// MaxPageSize caps how many rows any listing page can request.
	MaxPageSize = 500
)

// Params holds page-number pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Page describes the resolved window plus totals for the response.
type Page struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NormalizePageSize enforces the default and the supplied maximum.
// A non-positive max falls back to MaxPageSize.
func NormalizePageSize(size, defaultSize, max int) int {
	if max <= 0 {
		max = MaxPageSize
	}
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if size <= 0 {
		size = defaultSize
	}
	if size > max {
		return max
	}
	return size
}

// Resolve clamps the requested page to the available range for total rows
// and returns the window along with the row offset to query from.
func Resolve(params Params, total int64) (Page, int) {
	size := params.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		pages = 1
	}
	page := params.Page
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	return Page{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: pages,
	}, (page - 1) * size
}
