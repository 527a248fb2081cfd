package domain

import (
	"strings"
	"time"
)

// Default paging values used when the caller leaves them unset
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// SortKey selects the ordering applied before paging
type SortKey string

const (
	SortByID         SortKey = "id"
	SortByDateJoined SortKey = "dateJoined"
)

// Filter narrows the directory. Empty fields impose no constraint.
type Filter struct {
	Organization string
	Username     string
	Email        string
	PhoneNumber  string
	Status       Status
	Date         string // YYYY-MM-DD
}

// Validate rejects values that can never match a record
func (f Filter) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return InvalidParameter("status", "must be one of Active, Inactive, Pending, Blacklisted")
	}
	if f.Date != "" {
		if _, err := time.Parse(time.DateOnly, f.Date); err != nil {
			return InvalidParameter("date", "must be YYYY-MM-DD")
		}
	}
	return nil
}

// Matches is the conjunction of every non-empty field
func (f Filter) Matches(u *UserRecord) bool {
	if f.Organization != "" && u.Organization != f.Organization {
		return false
	}
	if f.Status != "" && u.Status != f.Status {
		return false
	}
	if f.Username != "" && !containsFold(u.Profile.Username, f.Username) {
		return false
	}
	if f.Email != "" && !containsFold(u.Profile.Email, f.Email) {
		return false
	}
	if f.PhoneNumber != "" && !strings.Contains(u.Profile.PhoneNumber, f.PhoneNumber) {
		return false
	}
	if f.Date != "" && u.JoinedDate() != f.Date {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ListParams is a page request against the directory
type ListParams struct {
	Page   int
	Limit  int
	Filter Filter
	Sort   SortKey
}

// Validate checks paging, sort and filter values
func (p ListParams) Validate() error {
	if p.Page < 1 {
		return InvalidParameter("page", "must be >= 1")
	}
	if p.Limit <= 0 {
		return InvalidParameter("limit", "must be > 0")
	}
	switch p.Sort {
	case "", SortByID, SortByDateJoined:
	default:
		return InvalidParameter("sort", "must be id or dateJoined")
	}
	return p.Filter.Validate()
}

// Offset is the number of matching records skipped before this page
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
