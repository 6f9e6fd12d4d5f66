package pdf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParsePageSpecifier parses a page selection for a document of totalPages
// pages. Supported forms: "1", "1,3", "1-5", "4-" (to the last page) and
// "all". An empty selection means all pages.
func ParsePageSpecifier(spec string, totalPages int) ([]int, error) {
	spec = strings.Join(strings.Fields(spec), "")
	if spec == "" || strings.EqualFold(spec, "all") {
		return allPages(totalPages), nil
	}

	var pageList []int
	for _, part := range strings.Split(spec, ",") {
		if part == "" {
			return nil, fmt.Errorf("empty entry in page selection %q", spec)
		}
		start, end, err := parsePageRange(part, totalPages)
		if err != nil {
			return nil, err
		}
		for i := start; i <= end; i++ {
			pageList = append(pageList, i)
		}
	}

	// Sort and remove duplicates
	sort.Ints(pageList)
	deduped := pageList[:0]
	for i, page := range pageList {
		if i == 0 || page != pageList[i-1] {
			deduped = append(deduped, page)
		}
	}

	if err := ValidatePageNumbers(deduped, totalPages); err != nil {
		return nil, err
	}
	return deduped, nil
}

// parsePageRange parses "N", "N-M" or "N-". Both ends are checked against
// totalPages before the caller expands the range.
func parsePageRange(part string, totalPages int) (int, int, error) {
	from, to, isRange := strings.Cut(part, "-")
	start, err := strconv.Atoi(from)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page number: %s", from)
	}
	end := start
	if isRange {
		end = totalPages
		if to != "" {
			if end, err = strconv.Atoi(to); err != nil {
				return 0, 0, fmt.Errorf("invalid end page: %s", to)
			}
		}
		if start > end {
			return 0, 0, fmt.Errorf("invalid range: start > end (%d > %d)", start, end)
		}
	}
	if err := ValidatePageNumbers([]int{start, end}, totalPages); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func allPages(totalPages int) []int {
	pages := make([]int, totalPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// ValidatePageNumbers checks if all page numbers are valid for a given total number of pages
func ValidatePageNumbers(pages []int, totalPages int) error {
	for _, page := range pages {
		if page < 1 {
			return fmt.Errorf("page numbers must be positive, got %d", page)
		}
		if page > totalPages {
			return fmt.Errorf("page %d exceeds total pages (%d)", page, totalPages)
		}
	}
	return nil
}
