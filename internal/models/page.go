package models

const (
	DefaultPageFrom = 0
	DefaultPageSize = 10
)

// Page selects a window of a list result. The window starts at the page
// boundary containing From, so From=3 Size=2 returns the second page.
type Page struct {
	From int
	Size int
}

func (p Page) Limit() int {
	return p.Size
}

func (p Page) Offset() int {
	if p.Size <= 0 {
		return 0
	}
	return (p.From / p.Size) * p.Size
}
