package api

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type pagination struct {
	Page  int
	Limit int
	Skip  int
}

// parsePagination reads page/limit query parameters, clamping non-positive
// or unparseable values to the defaults and capping limit.
func parsePagination(query url.Values) pagination {
	page := parsePositiveInt(query.Get("page"), defaultPage)
	limit := parsePositiveInt(query.Get("limit"), defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}
	return pagination{
		Page:  page,
		Limit: limit,
		Skip:  (page - 1) * limit,
	}
}

func parsePositiveInt(raw string, fallback int) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

type pageMeta struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalVideos int `json:"totalVideos"`
	Limit       int `json:"limit"`
}

// newPageMeta computes page metadata; a zero total yields zero pages.
func newPageMeta(p pagination, total int) pageMeta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return pageMeta{
		CurrentPage: p.Page,
		TotalPages:  totalPages,
		TotalVideos: total,
		Limit:       p.Limit,
	}
}
