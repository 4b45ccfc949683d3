package service

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage returns page, limit and offset with defaults applied.
func normalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit, (page - 1) * limit
}
