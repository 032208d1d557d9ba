package domain

import "errors"

// ErrInvalidPagination returned when perPage or page is below 1
var ErrInvalidPagination = errors.New("domain: invalid pagination")

// Page pagination request
type Page struct {
	PerPage int
	Page    int
}

// Validate rejects values below 1 and caps PerPage at MaxPerPage
func (p *Page) Validate() error {
	if p.PerPage < 1 || p.Page < 1 {
		return ErrInvalidPagination
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return nil
}

// Offset number of items to skip
func (p Page) Offset() int {
	return p.PerPage * (p.Page - 1)
}

// PageResult pagination response
type PageResult[T any] struct {
	Items      []T
	TotalItems int
}
