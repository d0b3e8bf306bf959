package pages

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// maxPages caps a single selection so a typo like "1-99999" cannot balloon
// the request.
const maxPages = 200

// ParsePages turns a human page selection like "1-5, 8, 12-14" into a
// sorted, deduplicated page list. Pages are 1-based; empty input, malformed
// entries, and descending ranges are rejected.
func ParsePages(input string) ([]int, error) {
	seen := make(map[int]bool)

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, err := parsePart(part)
		if err != nil {
			return nil, err
		}
		for p := lo; p <= hi; p++ {
			seen[p] = true
			if len(seen) > maxPages {
				return nil, fmt.Errorf("selection covers more than %d pages", maxPages)
			}
		}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("no pages selected")
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages, nil
}

func parsePart(part string) (lo, hi int, err error) {
	if before, after, found := strings.Cut(part, "-"); found {
		lo, err = parsePage(strings.TrimSpace(before))
		if err != nil {
			return 0, 0, err
		}
		hi, err = parsePage(strings.TrimSpace(after))
		if err != nil {
			return 0, 0, err
		}
		if hi < lo {
			return 0, 0, fmt.Errorf("range %q is descending", part)
		}
		return lo, hi, nil
	}

	lo, err = parsePage(part)
	if err != nil {
		return 0, 0, err
	}
	return lo, lo, nil
}

func parsePage(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a page number", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("page numbers start at 1, got %d", n)
	}
	return n, nil
}
