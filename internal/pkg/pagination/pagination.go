package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Params represents pagination parameters
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Meta represents pagination metadata
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// DefaultLimit is the default number of items per page
const DefaultLimit = 10

// MaxLimit is the maximum number of items per page
const MaxLimit = 1000

// GetParams extracts pagination parameters from request.
// Missing values fall back to page 1 and DefaultLimit; malformed or
// out-of-range values are rejected rather than clamped.
func GetParams(c *fiber.Ctx) (*Params, error) {
	page, err := parsePositive(c.Query("page"), 1)
	if err != nil {
		return nil, fmt.Errorf("page %w", err)
	}

	limit, err := parsePositive(c.Query("limit"), DefaultLimit)
	if err != nil {
		return nil, fmt.Errorf("limit %w", err)
	}
	if limit > MaxLimit {
		return nil, fmt.Errorf("limit must be <= %d", MaxLimit)
	}

	return &Params{Page: page, Limit: limit}, nil
}

func parsePositive(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	return n, nil
}

// GetMeta calculates pagination metadata
func GetMeta(params *Params, total int64) *Meta {
	limit := int64(params.Limit)
	totalPages := total / limit
	if total%limit > 0 {
		totalPages++
	}

	return &Meta{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: int(totalPages),
		HasNext:    int64(params.Page) < totalPages,
		HasPrev:    params.Page > 1,
	}
}

// Response represents paginated response
type Response struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta"`
}

// NewResponse creates a new paginated response
func NewResponse(data interface{}, params *Params, total int64) *Response {
	return &Response{
		Data: data,
		Meta: GetMeta(params, total),
	}
}
