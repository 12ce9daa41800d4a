// Package models defines the core data structures for users, profile
// sections and their completion state.
package models

import (
	"errors"
	"fmt"
)

// Role identifies the kind of dashboard account.
type Role string

const (
	// RoleAdmin may read and edit any user's profile.
	RoleAdmin Role = "admin"
	// RoleVendor is a brand running campaigns.
	RoleVendor Role = "vendor"
	// RoleInfluencer is a creator taking part in campaigns.
	RoleInfluencer Role = "influencer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleVendor, RoleInfluencer:
		return true
	}
	return false
}

// User represents a registered dashboard account.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"userId"`
	// Role is the account kind.
	Role Role `json:"role"`
}

// Credentials is the authenticated identity used for profile requests.
type Credentials struct {
	// Token is the bearer token sent in the Authorization header.
	Token string
	// UserID is the owner of the profile being fetched.
	UserID string
}

// Registration is returned by the register endpoint.
type Registration struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
	Token  string `json:"token"`
}

// Section identifies one part of the multi-step profile wizard.
// Its integer value is the wizard step index.
type Section int

const (
	SectionProfile Section = iota
	SectionSocial
	SectionCategories
	SectionPortfolio
	SectionPayment
)

// SectionCount is the number of profile sections.
const SectionCount = 5

// ErrUnknownSection is returned for a section name or index outside the known set.
var ErrUnknownSection = errors.New("unknown profile section")

var sectionNames = [SectionCount]string{
	"profile",
	"social",
	"categories",
	"portfolio",
	"payment",
}

// Sections returns every section in wizard order.
func Sections() []Section {
	return []Section{SectionProfile, SectionSocial, SectionCategories, SectionPortfolio, SectionPayment}
}

// Valid reports whether s is a known section.
func (s Section) Valid() bool {
	return s >= 0 && s < SectionCount
}

func (s Section) String() string {
	if !s.Valid() {
		return fmt.Sprintf("section(%d)", int(s))
	}
	return sectionNames[s]
}

// ParseSection maps a section key such as "social" to its Section.
func ParseSection(name string) (Section, error) {
	for i, n := range sectionNames {
		if n == name {
			return Section(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSection, name)
}

// CompletionState holds one completion flag per section, indexed by Section.
type CompletionState [SectionCount]bool

// Count returns how many sections are complete.
func (c CompletionState) Count() int {
	n := 0
	for _, done := range c {
		if done {
			n++
		}
	}
	return n
}

// CompletionReport is the wire form of a user's completion state.
type CompletionReport struct {
	CompletedSteps CompletionState `json:"completedSteps"`
	Completed      int             `json:"completed"`
	Total          int             `json:"total"`
}

// NewCompletionReport wraps state with its counters.
func NewCompletionReport(state CompletionState) CompletionReport {
	return CompletionReport{
		CompletedSteps: state,
		Completed:      state.Count(),
		Total:          SectionCount,
	}
}
