package observability

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	HeaderServerTiming = "Server-Timing"
	HeaderSource       = "X-Source"
	HeaderCacheTime    = "X-Cache-Time"
	HeaderDBTime       = "X-DB-Time"
)

func formatMs(ms float64) string { return strconv.FormatFloat(ms, 'f', 2, 64) }

// AppendServerTiming adds one Server-Timing metric. Non-positive durations
// are omitted; a metric with neither duration nor description is skipped.
func AppendServerTiming(w http.ResponseWriter, name string, durMs float64, desc string) {
	if durMs <= 0 && desc == "" {
		return
	}
	var b strings.Builder
	b.WriteString(name)
	if durMs > 0 {
		b.WriteString(";dur=")
		b.WriteString(formatMs(durMs))
	}
	if desc != "" {
		b.WriteString(";desc=")
		b.WriteString(strconv.Quote(desc))
	}
	w.Header().Add(HeaderServerTiming, b.String())
}

// SetIfPos sets key to ms formatted with two decimals when ms is positive.
func SetIfPos(w http.ResponseWriter, key string, ms float64) {
	if ms > 0 {
		w.Header().Set(key, formatMs(ms))
	}
}

// SetSource reports where a read was served from (cache or db).
func SetSource(w http.ResponseWriter, source string) {
	if source != "" {
		w.Header().Set(HeaderSource, source)
	}
}
