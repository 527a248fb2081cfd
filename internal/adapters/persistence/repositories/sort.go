package repositories

import (
	"slices"
	"strings"

	"lendsqr-admin/internal/core/domain"
)

// SortedSlice orders a copy of records by key and returns the window
// [offset, offset+limit). An offset past the end yields an empty slice.
func SortedSlice(records []domain.UserRecord, key domain.SortKey, offset, limit int) []domain.UserRecord {
	sorted := slices.Clone(records)
	switch key {
	case domain.SortByDateJoined:
		slices.SortStableFunc(sorted, func(a, b domain.UserRecord) int {
			if c := strings.Compare(a.DateJoined, b.DateJoined); c != 0 {
				return c
			}
			return CompareIDs(a.ID, b.ID)
		})
	default:
		slices.SortStableFunc(sorted, func(a, b domain.UserRecord) int {
			return CompareIDs(a.ID, b.ID)
		})
	}

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= len(sorted) {
		return []domain.UserRecord{}
	}
	end := len(sorted)
	if limit < end-offset {
		end = offset + limit
	}
	return sorted[offset:end]
}

// CompareIDs orders numeric ids by value ahead of all other ids,
// which are ordered lexicographically.
func CompareIDs(a, b string) int {
	aNum, bNum := isDigits(a), isDigits(b)
	switch {
	case aNum && bNum:
		x, y := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(x) != len(y) {
			if len(x) < len(y) {
				return -1
			}
			return 1
		}
		if c := strings.Compare(x, y); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case aNum:
		return -1
	case bNum:
		return 1
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
