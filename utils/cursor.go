package utils

// TrimPage implements the fetch-N+1 cursor scheme shared by every
// cursor-paginated list: the query fetches limit+1 rows; when the overflow row
// is present it is popped and its identifier becomes the next cursor. A nil
// cursor signals the end of the list. The popped row is re-fetched as the
// first row of the next page, so rows are never skipped across pages.
func TrimPage[T any](rows []T, limit int, id func(T) uint) ([]T, *uint) {
	if len(rows) <= limit {
		return rows, nil
	}
	next := id(rows[limit])
	return rows[:limit], &next
}

// NextOffsetPage implements the offset variant used by ranked feeds, where the
// scorer may reshuffle ordering between requests: there is a next page only
// when the current page came back full.
func NextOffsetPage(got, limit, page int) *int {
	if got < limit {
		return nil
	}
	next := page + 1
	return &next
}
