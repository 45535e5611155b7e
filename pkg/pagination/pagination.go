// Package pagination slices ordered result sets into fixed-size, 1-indexed pages.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of items on every listing page.
const DefaultPageSize = 10

// Request describes the page a caller asked for. Raw is the unparsed
// "page" query parameter and may be empty or garbage.
type Request struct {
	Raw  string
	Size int
}

// NewRequest builds a Request, falling back to DefaultPageSize for size < 1.
func NewRequest(raw string, size int) Request {
	if size < 1 {
		size = DefaultPageSize
	}
	return Request{Raw: raw, Size: size}
}

// PerPage returns the page size, falling back to DefaultPageSize.
func (r Request) PerPage() int {
	if r.Size < 1 {
		return DefaultPageSize
	}
	return r.Size
}

// NumPages returns how many pages total items span. An empty collection
// still has one (empty) page.
func NumPages(total int64, size int) int {
	if size < 1 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

// Resolve picks the page number for a collection of total items and
// returns it with the matching offset. Non-numeric or < 1 page numbers
// resolve to 1, numbers past the end resolve to the last page.
func (r Request) Resolve(total int64) (number, offset int) {
	size := r.PerPage()
	last := NumPages(total, size)
	raw := strings.TrimSpace(r.Raw)
	number, err := strconv.Atoi(raw)
	switch {
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-"):
		number = last
	case err != nil || number < 1:
		number = 1
	case number > last:
		number = last
	}
	return number, (number - 1) * size
}

// Page is one page of an ordered collection.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Number      int   `json:"number"`
	NumPages    int   `json:"num_pages"`
	Total       int64 `json:"total"`
	PerPage     int   `json:"per_page"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// New assembles a Page from items already cut to the requested window.
func New[T any](items []T, number, size int, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	numPages := NumPages(total, size)
	return &Page[T]{
		Items:       items,
		Number:      number,
		NumPages:    numPages,
		Total:       total,
		PerPage:     size,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}
}

// Slice pages an in-memory ordered sequence.
func Slice[T any](items []T, r Request) *Page[T] {
	total := int64(len(items))
	number, offset := r.Resolve(total)
	size := r.PerPage()
	end := offset + size
	if end > len(items) {
		end = len(items)
	}
	window := make([]T, end-offset)
	copy(window, items[offset:end])
	return New(window, number, size, total)
}
