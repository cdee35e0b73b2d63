package shared

import (
	"net/http"
	"strconv"
)

// ListRange is an offset/limit window parsed from query parameters.
type ListRange struct {
	Offset int
	Limit  int
}

// ParseListRange reads skip/limit query parameters with sane bounds.
func ParseListRange(r *http.Request) ListRange {
	offset, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	if offset < 0 {
		offset = 0
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return ListRange{Offset: offset, Limit: limit}
}
