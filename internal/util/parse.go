package util

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultValue
}

// ParseBool parses "true"/"1"/"yes"; anything else is false
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// ParseCSV splits a comma-separated query value, dropping blanks
func ParseCSV(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Pagination is the page window parsed from ?page=&limit=
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePagination reads page (1-based) and limit from the query string,
// clamping limit to [1, 100].
func ParsePagination(c *gin.Context) Pagination {
	page := ParseInt(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	limit := ParseInt(c.Query("limit"), defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return Pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}
}
