package review

// Viewport width breakpoints in pixels and the height at which a viewport
// counts as tall.
const (
	breakpointSmall  = 640
	breakpointMedium = 1024
	breakpointLarge  = 1440
	tallHeight       = 900
)

// ItemsPerPage returns the page size for a viewport.
func ItemsPerPage(width, height int) int {
	tall := height >= tallHeight
	pick := func(short, tallSize int) int {
		if tall {
			return tallSize
		}
		return short
	}

	switch {
	case width < breakpointSmall:
		return pick(4, 6)
	case width < breakpointMedium:
		return pick(6, 9)
	case width < breakpointLarge:
		return pick(9, 12)
	default:
		return pick(12, 16)
	}
}

// TotalPages returns ceil(n/perPage). A non-positive page size yields 0.
func TotalPages(n, perPage int) int {
	if n <= 0 || perPage <= 0 {
		return 0
	}
	return (n + perPage - 1) / perPage
}

// ClampPage keeps page within [0, max(total-1, 0)].
func ClampPage(page, total int) int {
	if page >= total {
		page = total - 1
	}
	if page < 0 {
		return 0
	}
	return page
}

// PageItems returns the slice [page*perPage, (page+1)*perPage) of items,
// truncated to the available range.
func PageItems[T any](items []T, page, perPage int) []T {
	if page < 0 || perPage <= 0 {
		return nil
	}
	start := page * perPage
	if start >= len(items) {
		return nil
	}
	end := min(start+perPage, len(items))
	return items[start:end]
}
