package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Filter shapes a single page query. It is never persisted.
type Filter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Status    string
	Page      int
	PageSize  int
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts a bare date, a local date-time or RFC 3339. Values without
// a zone are read as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// EndOfDay moves t to 23:59:59 of the same calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// ParseFilter reads start_date, end_date, status, page and page_size from a
// query string. Unset fields stay zero; see Normalize for defaults.
func ParseFilter(q url.Values) (Filter, error) {
	var f Filter

	if v := strings.TrimSpace(q.Get("start_date")); v != "" {
		t, err := ParseTime(v)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: start_date: %v", ErrInvalidFilter, err)
		}
		f.StartDate = &t
	}
	if v := strings.TrimSpace(q.Get("end_date")); v != "" {
		t, err := ParseTime(v)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: end_date: %v", ErrInvalidFilter, err)
		}
		f.EndDate = &t
	}
	f.Status = strings.TrimSpace(q.Get("status"))

	var err error
	if f.Page, err = parseCount(q, "page"); err != nil {
		return Filter{}, err
	}
	if f.PageSize, err = parseCount(q, "page_size"); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func parseCount(q url.Values, key string) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %q", ErrInvalidFilter, key, v)
	}
	return n, nil
}

// Normalize fills page and page_size defaults and enforces the page size bound.
// maxPageSize <= 0 disables the bound.
func (f Filter) Normalize(maxPageSize int) (Filter, error) {
	if f.Page < 0 || f.PageSize < 0 {
		return Filter{}, fmt.Errorf("%w: page and page_size must be non-negative", ErrInvalidFilter)
	}
	if f.Page == 0 {
		f.Page = DefaultPage
	}
	if f.PageSize == 0 {
		f.PageSize = DefaultPageSize
	}
	if maxPageSize > 0 && f.PageSize > maxPageSize {
		return Filter{}, fmt.Errorf("%w: page_size %d exceeds %d", ErrInvalidFilter, f.PageSize, maxPageSize)
	}
	if f.StartDate != nil && f.EndDate != nil && EndOfDay(*f.EndDate).Before(*f.StartDate) {
		return Filter{}, fmt.Errorf("%w: end_date is before start_date", ErrInvalidFilter)
	}
	return f, nil
}

func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
