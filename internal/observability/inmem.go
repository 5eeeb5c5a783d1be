package observability

import "sync"

type observe struct {
	Kind    string
	Source  string
	Method  string
	Route   string
	Status  int
	Records int
	CacheMs float64
	DBMs    float64
	Dur     float64
	OK      bool
}

// Inmem keeps the last max observations in memory. It backs tests and local
// runs where a Prometheus scrape is overkill.
type Inmem struct {
	mu     sync.Mutex
	last   []*observe
	max    int
	totals struct {
		cacheHits, cacheMiss, cacheErr int
	}
}

func NewInmem(max int) *Inmem {
	return &Inmem{
		max: max,
	}
}

func (m *Inmem) push(v *observe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.max <= 0 {
		m.last = []*observe{}
		return
	}
	m.last = append(m.last, v)
	if len(m.last) > m.max {
		m.last = m.last[1:]
	}
}

func (m *Inmem) ObserveLookup(source string, cacheMs, dbMs float64) {
	m.push(&observe{Kind: "lookup", Source: source, CacheMs: cacheMs, DBMs: dbMs})
}

func (m *Inmem) ObserveWrite(records int, dbWriteMs float64) {
	m.push(&observe{Kind: "write", Records: records, DBMs: dbWriteMs})
}

func (m *Inmem) ObserveHTTP(method, route string, status int, durMs float64) {
	m.push(&observe{Kind: "http", Method: method, Route: route, Status: status, Dur: durMs})
}

func (m *Inmem) ObserveKafka(processMs float64, ok bool) {
	m.push(&observe{Kind: "kafka", Dur: processMs, OK: ok})
}

func (m *Inmem) IncCacheHit() {
	m.mu.Lock()
	m.totals.cacheHits++
	m.mu.Unlock()
}

func (m *Inmem) IncCacheMiss() {
	m.mu.Lock()
	m.totals.cacheMiss++
	m.mu.Unlock()
}

func (m *Inmem) IncCacheError() {
	m.mu.Lock()
	m.totals.cacheErr++
	m.mu.Unlock()
}

// Kinds lists the kinds of the retained observations, oldest first.
func (m *Inmem) Kinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.last))
	for _, o := range m.last {
		out = append(out, o.Kind)
	}
	return out
}

// CacheTotals returns hit, miss and error counts.
func (m *Inmem) CacheTotals() (hits, misses, errs int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals.cacheHits, m.totals.cacheMiss, m.totals.cacheErr
}

// KafkaResults returns the outcome of every retained kafka observation.
func (m *Inmem) KafkaResults() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []bool
	for _, o := range m.last {
		if o.Kind == "kafka" {
			out = append(out, o.OK)
		}
	}
	return out
}
