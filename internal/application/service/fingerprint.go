package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/TemirB/orders-api/internal/domain"

	"github.com/cespare/xxhash/v2"
)

// KeyPrefix namespaces every cached result set.
const KeyPrefix = "orders:"

// Fingerprint derives the cache key of a normalized filter. Fields are
// written in a fixed order and dates are reduced to what the query actually
// uses, so equivalent filters share a key.
func Fingerprint(f domain.Filter) string {
	var b strings.Builder
	b.WriteString("start_date=")
	if f.StartDate != nil {
		b.WriteString(f.StartDate.UTC().Format(time.RFC3339Nano))
	}
	b.WriteString("&end_date=")
	if f.EndDate != nil {
		b.WriteString(domain.EndOfDay(*f.EndDate).UTC().Format(time.RFC3339Nano))
	}
	b.WriteString("&status=")
	b.WriteString(strconv.Quote(f.Status))
	b.WriteString("&page=")
	b.WriteString(strconv.Itoa(f.Page))
	b.WriteString("&page_size=")
	b.WriteString(strconv.Itoa(f.PageSize))

	return fmt.Sprintf("%s%016x", KeyPrefix, xxhash.Sum64String(b.String()))
}
