package utils

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

// GetPaginationParams extracts page and limit, falling back to defaultSize.
func GetPaginationParams(c echo.Context, defaultSize int) PaginationParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("limit"))

	if page <= 0 {
		page = 1
	}

	if pageSize <= 0 || pageSize > 100 {
		pageSize = defaultSize
	}

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}
}

// SortParams holds a sort field and direction taken from sortBy and sortOrder.
type SortParams struct {
	Field string
	Desc  bool
}

// GetSortParams returns the requested sort if its field is allowed, otherwise the fallback field descending.
func GetSortParams(c echo.Context, fallback string, allowed ...string) SortParams {
	field := c.QueryParam("sortBy")
	valid := false
	for _, a := range allowed {
		if a == field {
			valid = true
			break
		}
	}
	if !valid {
		field = fallback
	}

	return SortParams{
		Field: field,
		Desc:  !strings.EqualFold(c.QueryParam("sortOrder"), "asc"),
	}
}

// QueryBool parses an optional boolean query parameter.
func QueryBool(c echo.Context, name string) *bool {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// QueryFloat parses an optional float query parameter.
func QueryFloat(c echo.Context, name string) *float64 {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
