// Package completion derives per-section completion flags from a profile record.
//
// Every predicate is pure. An absent section is incomplete, never an error.
// The profile and payment sections count as complete as soon as any single
// tracked attribute is present.
package completion

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"

	"github.com/atinyakov/ProfileDesk/internal/models"
)

var profileKeys = []string{
	models.AttrPhoto,
	models.AttrGenderID,
	models.AttrDateOfBirth,
	models.AttrAddress1,
	models.AttrCountryName,
	models.AttrStateName,
	models.AttrBio,
}

var bankingKeys = []string{
	models.AttrBankName,
	models.AttrAccountHolder,
	models.AttrAccountNumber,
	models.AttrBankCode,
	models.AttrBranchAddress,
	models.AttrContactNumber,
	models.AttrEmail,
	models.AttrCurrency,
	models.AttrTaxID,
}

// Present reports whether an attribute value counts as filled in.
// Strings are trimmed first; numbers of any kind are present unless zero or
// NaN; booleans are their own value; any other non-nil value is present.
func Present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return strings.TrimSpace(string(x)) != ""
		}
		return f != 0 && !math.IsNaN(f)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return strings.TrimSpace(rv.String()) != ""
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

func anyPresent(attrs models.Attributes, keys []string) bool {
	for _, k := range keys {
		if Present(attrs[k]) {
			return true
		}
	}
	return false
}

// Profile is complete when any tracked personal attribute is present.
func Profile(attrs models.Attributes) bool {
	return anyPresent(attrs, profileKeys)
}

// Social is complete when at least one link exists.
func Social(links []models.SocialLink) bool {
	return len(links) > 0
}

// Categories is complete when at least one category is selected.
func Categories(ids []models.CategoryID) bool {
	return len(ids) > 0
}

// Portfolio is complete with a non-blank URL or any file with a non-blank path.
func Portfolio(p *models.Portfolio) bool {
	if p == nil {
		return false
	}
	if strings.TrimSpace(p.PortfolioURL) != "" {
		return true
	}
	for _, f := range p.FilePaths {
		if strings.TrimSpace(f.FilePath) != "" {
			return true
		}
	}
	return false
}

// Payment is complete with any banking attribute, or any payout method
// carrying both a method type and its details.
func Payment(p *models.PaymentAccount) bool {
	if p == nil {
		return false
	}
	if anyPresent(p.Attributes, bankingKeys) {
		return true
	}
	for _, m := range p.Methods {
		if Present(m.Method) && Present(m.PaymentDetails) {
			return true
		}
	}
	return false
}

// Section evaluates the predicate for one section of rec.
func Section(rec models.ProfileRecord, s models.Section) bool {
	switch s {
	case models.SectionProfile:
		return Profile(rec.Profile)
	case models.SectionSocial:
		return Social(rec.Social)
	case models.SectionCategories:
		return Categories(rec.Categories)
	case models.SectionPortfolio:
		return Portfolio(rec.Portfolio)
	case models.SectionPayment:
		return Payment(rec.Payment)
	}
	return false
}

// Evaluate computes the completion flag of every section.
func Evaluate(rec models.ProfileRecord) models.CompletionState {
	var state models.CompletionState
	for _, s := range models.Sections() {
		state[s] = Section(rec, s)
	}
	return state
}
