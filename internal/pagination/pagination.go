package pagination

import "strconv"

const (
	DefaultSize = 20
	MaxSize     = 100
)

// Page is a resolved offset window over an ordered listing.
type Page struct {
	Offset int
	Limit  int
}

// New clamps a 1-based page number and a page size into a window.
func New(page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return Page{Offset: (page - 1) * size, Limit: size}
}

// FromQuery parses the raw page and size query values. ok is false when
// neither is set, meaning the caller wants the full listing.
func FromQuery(page, size string) (p Page, ok bool) {
	if page == "" && size == "" {
		return Page{}, false
	}
	return New(parseIntDefault(page, 1), parseIntDefault(size, DefaultSize)), true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
