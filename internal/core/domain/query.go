package domain

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPageNumber keeps Offset far from int overflow.
	MaxPageNumber = 1_000_000
)

// ItemQuery filters and pages flash items. Zero values mean "no filter".
type ItemQuery struct {
	ActivityID string     `json:"activity_id,omitempty"`
	Keyword    string     `json:"keyword,omitempty"`
	Status     ItemStatus `json:"status,omitempty"`
	PageNumber int        `json:"page_number"`
	PageSize   int        `json:"page_size"`
}

// Normalize fills paging defaults and clamps the page number and size.
func (q ItemQuery) Normalize() ItemQuery {
	if q.PageNumber < 1 {
		q.PageNumber = 1
	}
	if q.PageNumber > MaxPageNumber {
		q.PageNumber = MaxPageNumber
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

func (q ItemQuery) Offset() int {
	return (q.PageNumber - 1) * q.PageSize
}

func (q ItemQuery) Limit() int {
	return q.PageSize
}

// PageResult is one page of items plus the total number of matches.
type PageResult struct {
	Items []FlashItem `json:"items"`
	Total int         `json:"total"`
}
