package domain

// DefaultPageSize is the number of results per page.
const DefaultPageSize = 10

// Page is one slice of an ordered result list.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Total    int  `json:"total"`     // All matches for the query, pre-pagination
	Page     int  `json:"page"`      // 1-indexed
	PageSize int  `json:"page_size"` // Items per page
	HasMore  bool `json:"has_more"`  // Unconsumed matches remain after this page

	// Relaxed marks property results produced by the fallback filter.
	Relaxed bool `json:"relaxed,omitempty"`
}

// EmptyPage returns a page with no items and no total.
func EmptyPage[T any](page, pageSize int) Page[T] {
	page, pageSize = normalizePaging(page, pageSize)
	return Page[T]{
		Items:    []T{},
		Page:     page,
		PageSize: pageSize,
	}
}

// Paginate slices ranked into the requested 1-indexed page. Bounds are
// [(page-1)*size, page*size) and HasMore is true while end < total.
func Paginate[T any](ranked []T, page, pageSize int) Page[T] {
	page, pageSize = normalizePaging(page, pageSize)
	total := len(ranked)

	start, end := total, total
	if page == 1 || hasMore(page-1, pageSize, total) {
		start = (page - 1) * pageSize
		end = start + min(pageSize, total-start)
	}

	items := make([]T, end-start)
	copy(items, ranked[start:end])

	return Page[T]{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  hasMore(page, pageSize, total),
	}
}

// PageHasMore reports whether items remain after page for a known total.
func PageHasMore(page, pageSize, total int) bool {
	page, pageSize = normalizePaging(page, pageSize)
	return hasMore(page, pageSize, total)
}

// hasMore is page*pageSize < total without the multiplication, so huge page
// numbers cannot overflow.
func hasMore(page, pageSize, total int) bool {
	if total <= 0 {
		return false
	}
	return page <= (total-1)/pageSize
}

// normalizePaging corrects out-of-range paging values. This is bound
// correction, not validation.
func normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}
