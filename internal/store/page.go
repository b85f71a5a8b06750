package store

const (
	DefaultPageSize = 8
	MaxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps user input: page < 1 becomes 1, size outside (0, MaxPageSize] becomes the default or the max.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	if p.Number < 1 || p.Size <= 0 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// Envelope is the pagination block returned next to listed rows.
type Envelope struct {
	Count   int64 `json:"count"`
	PageNow int   `json:"page_now"`
	PageAll int   `json:"page_all"`
}

func (p Page) Envelope(count int64) Envelope {
	all := 0
	if p.Size > 0 {
		all = int((count + int64(p.Size) - 1) / int64(p.Size))
	}
	return Envelope{Count: count, PageNow: p.Number, PageAll: all}
}

// Slice returns the part of [0, n) covered by the page.
func (p Page) Slice(n int) (lo, hi int) {
	lo = p.Offset()
	if lo > n {
		lo = n
	}
	hi = n
	if p.Size > 0 && lo+p.Size < n {
		hi = lo + p.Size
	}
	return lo, hi
}
