package pkg

func Filter[T any](items []T, predicate func(T) bool) []T {
	filtered := []T{}
	for _, item := range items {
		if predicate(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

func MapSlice[T, R any](items []T, f func(T) R) []R {
	res := make([]R, 0, len(items))
	for _, item := range items {
		res = append(res, f(item))
	}
	return res
}

// Page drops the first skip items and keeps at most take of the rest.
// take <= 0 keeps everything.
func Page[T any](items []T, skip, take int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if take > 0 && take < len(items) {
		items = items[:take]
	}
	return items
}
