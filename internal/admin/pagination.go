package admin

import "fmt"

// Pagination describes the pager under the list.
type Pagination struct {
	Page        int
	TotalPages  int
	Total       int
	Visible     bool
	PrevEnabled bool
	NextEnabled bool
	Label       string
}

// Paginate computes the pager for page given total matching appointments.
// The pager is hidden when everything fits on one page.
func Paginate(page, total int) Pagination {
	if page < 1 {
		page = 1
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + PageSize - 1) / PageSize
	}
	p := Pagination{
		Page:        page,
		TotalPages:  totalPages,
		Total:       total,
		Visible:     totalPages > 1,
		PrevEnabled: page > 1,
		NextEnabled: page < totalPages,
	}
	if p.Visible {
		p.Label = fmt.Sprintf("Page %d of %d (%d total)", page, totalPages, total)
	}
	return p
}
