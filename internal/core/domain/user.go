package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Status represents the lifecycle state of a customer account
type Status string

const (
	StatusActive      Status = "Active"
	StatusInactive    Status = "Inactive"
	StatusPending     Status = "Pending"
	StatusBlacklisted Status = "Blacklisted"
)

// Statuses lists every valid status in display order
var Statuses = []Status{StatusActive, StatusInactive, StatusPending, StatusBlacklisted}

// Valid reports whether s is one of the four known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending, StatusBlacklisted:
		return true
	}
	return false
}

// UserRecord is the canonical customer record mirrored from the remote source
type UserRecord struct {
	ID           string     `json:"id"`
	Organization string     `json:"organization"`
	Status       Status     `json:"status"`
	DateJoined   string     `json:"dateJoined"`
	Profile      Profile    `json:"profile"`
	Account      Account    `json:"account"`
	Education    Education  `json:"education"`
	Socials      Socials    `json:"socials"`
	Guarantors   Guarantors `json:"guarantors"`
}

// Profile holds personal information
type Profile struct {
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	PhoneNumber   string     `json:"phoneNumber"`
	BVN           FlexString `json:"bvn"`
	Gender        string     `json:"gender"`
	MaritalStatus string     `json:"maritalStatus"`
	Children      Count      `json:"children"`
	Residence     string     `json:"residence"`
}

// Account holds the customer's wallet details
type Account struct {
	Tier          int        `json:"tier"`
	Balance       float64    `json:"balance"`
	AccountNumber FlexString `json:"accountNumber"`
	BankName      string     `json:"bankName"`
}

// IncomeRange is a monthly income band
type IncomeRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Education holds education and employment details. Every field is optional.
type Education struct {
	Level            *string      `json:"level,omitempty"`
	EmploymentStatus *string      `json:"employmentStatus,omitempty"`
	Sector           *string      `json:"sector,omitempty"`
	Duration         *string      `json:"duration,omitempty"`
	OfficeEmail      *string      `json:"officeEmail,omitempty"`
	MonthlyIncome    *IncomeRange `json:"monthlyIncome,omitempty"`
	LoanRepayment    *float64     `json:"loanRepayment,omitempty"`
}

// Socials holds optional social handles
type Socials struct {
	Twitter   *string `json:"twitter,omitempty"`
	Facebook  *string `json:"facebook,omitempty"`
	Instagram *string `json:"instagram,omitempty"`
}

// Guarantor is a third-party reference for the customer
type Guarantor struct {
	FullName     string `json:"fullName"`
	PhoneNumber  string `json:"phoneNumber"`
	Email        string `json:"email"`
	Relationship string `json:"relationship"`
}

// Guarantors decodes from a single object, an array, or null.
type Guarantors []Guarantor

func (g *Guarantors) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*g = Guarantors{}
		return nil
	case trimmed[0] == '{':
		var one Guarantor
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return err
		}
		*g = Guarantors{one}
		return nil
	}

	var many []Guarantor
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return err
	}
	if many == nil {
		many = []Guarantor{}
	}
	*g = many
	return nil
}

// FlexString accepts either a JSON string or a JSON number
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", trimmed)
	}
	*f = FlexString(n.String())
	return nil
}

// Count is a non-negative count that also accepts numeric strings and "None"
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	var fs FlexString
	if err := fs.UnmarshalJSON(data); err != nil {
		return err
	}
	s := strings.TrimSpace(string(fs))
	if s == "" || strings.EqualFold(s, "none") {
		*c = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 {
		return fmt.Errorf("invalid count %q", s)
	}
	*c = Count(n)
	return nil
}

// UserSummary is the list-view projection of a UserRecord
type UserSummary struct {
	ID           string `json:"id"`
	Organization string `json:"organization"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber"`
	DateJoined   string `json:"dateJoined"`
	Status       Status `json:"status"`
}

// Summary projects the record for list views
func (u *UserRecord) Summary() UserSummary {
	return UserSummary{
		ID:           u.ID,
		Organization: u.Organization,
		Username:     u.Profile.Username,
		Email:        u.Profile.Email,
		PhoneNumber:  u.Profile.PhoneNumber,
		DateJoined:   u.DateJoined,
		Status:       u.Status,
	}
}

// JoinedDate returns the calendar-date portion of DateJoined
func (u *UserRecord) JoinedDate() string {
	if len(u.DateJoined) < len("2006-01-02") {
		return u.DateJoined
	}
	return u.DateJoined[:len("2006-01-02")]
}

// UserPage is one window of the filtered, sorted directory
type UserPage struct {
	Data  []UserSummary `json:"data"`
	Total int64         `json:"total"`
}

// DirectoryStats backs the dashboard stat cards
type DirectoryStats struct {
	Total    int64            `json:"total"`
	ByStatus map[Status]int64 `json:"by_status"`
}
