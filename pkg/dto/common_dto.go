package dto

// PageQuery is the shared pagination query: page starts at 1, per_page
// defaults to 15.
type PageQuery struct {
	Page    int `form:"page"`
	PerPage int `form:"per_page"`
}

const (
	defaultPerPage = 15
	maxPerPage     = 100
)

func (q *PageQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = defaultPerPage
	}
	if q.PerPage > maxPerPage {
		q.PerPage = maxPerPage
	}
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}
