package models

const (
	DefaultPageLimit = 12
	MaxPageLimit     = 100
	MaxPage          = 10000
)

// Pagination holds 1-based page parameters
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination clamps page and limit to sane values
func NewPagination(page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Pagination{Page: page, Limit: limit}
}

// Offset returns the row offset for the page
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns the number of pages needed for total rows
func (p Pagination) TotalPages(total int) int {
	if p.Limit <= 0 || total == 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}
