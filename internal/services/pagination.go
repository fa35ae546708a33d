package services

import (
	"sort"
	"strings"
)

const PageSize = 10

type ListItem struct {
	ID    int64
	Label string
}

type ListPage struct {
	Items      []ListItem
	Page       int
	TotalPages int
	Total      int
	Filter     string
}

func (p ListPage) HasPrev() bool {
	return p.Page > 1
}

func (p ListPage) HasNext() bool {
	return p.Page < p.TotalPages
}

// Paginate filters items by a case-insensitive substring of their label,
// orders them by id and returns the requested page. A blank filter keeps
// every item. Pages past the end are empty.
func Paginate(items []ListItem, page int, filter string) ListPage {
	if page < 1 {
		page = 1
	}

	needle := strings.ToLower(filter)
	filtered := make([]ListItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(filter) == "" || strings.Contains(strings.ToLower(item.Label), needle) {
			filtered = append(filtered, item)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].ID < filtered[j].ID
	})

	total := len(filtered)
	start := (page - 1) * PageSize
	end := start + PageSize
	if end > total {
		end = total
	}

	var pageItems []ListItem
	if start < total {
		pageItems = filtered[start:end]
	}

	return ListPage{
		Items:      pageItems,
		Page:       page,
		TotalPages: (total + PageSize - 1) / PageSize,
		Total:      total,
		Filter:     filter,
	}
}
