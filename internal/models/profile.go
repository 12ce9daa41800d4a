package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Profile attribute keys checked for completion.
const (
	AttrPhoto       = "photo"
	AttrGenderID    = "genderid"
	AttrDateOfBirth = "dob"
	AttrAddress1    = "address1"
	AttrAddress2    = "address2"
	AttrCountryName = "countryname"
	AttrStateName   = "statename"
	AttrBio         = "bio"
)

// Banking attribute keys of a payment account.
const (
	AttrBankName      = "bankname"
	AttrAccountHolder = "accountholder"
	AttrAccountNumber = "accountnumber"
	AttrBankCode      = "bankcode"
	AttrBranchAddress = "branchaddress"
	AttrContactNumber = "contactnumber"
	AttrEmail         = "email"
	AttrCurrency      = "currency"
	AttrTaxID         = "taxid"
)

const paymentMethodKey = "paymentmethod"

// ErrSectionType is returned when a value does not have the shape of the section it is assigned to.
var ErrSectionType = errors.New("section data has wrong type")

// Attributes is a mapping of scalar attributes as decoded from JSON.
type Attributes map[string]any

// Clone returns a copy of the map. Values are shared.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// SocialLink is one social-network account of a user.
type SocialLink struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
}

// CategoryID identifies an entry of the global category taxonomy.
// It decodes from either a JSON string or a JSON number.
type CategoryID string

// UnmarshalJSON accepts "12" and 12 alike.
func (c *CategoryID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = CategoryID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("category id: %w", err)
	}
	*c = CategoryID(n.String())
	return nil
}

// FileDescriptor points at an uploaded portfolio file.
type FileDescriptor struct {
	FilePath string `json:"filepath"`
}

// Portfolio is either an external URL, a list of uploaded files, or both.
type Portfolio struct {
	PortfolioURL string           `json:"portfoliourl"`
	FilePaths    []FileDescriptor `json:"filepaths"`
}

// PaymentMethod is a payout method such as "upi" with its method-specific details.
type PaymentMethod struct {
	Method         string `json:"method"`
	PaymentDetails any    `json:"paymentdetails"`
}

// PaymentAccount holds banking attributes plus the list of payout methods.
// On the wire the attributes and the "paymentmethod" array share one object.
type PaymentAccount struct {
	Attributes Attributes
	Methods    []PaymentMethod
}

// MarshalJSON flattens the attributes next to the "paymentmethod" array.
func (p PaymentAccount) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Attributes)+1)
	for k, v := range p.Attributes {
		out[k] = v
	}
	methods := p.Methods
	if methods == nil {
		methods = []PaymentMethod{}
	}
	out[paymentMethodKey] = methods
	return json.Marshal(out)
}

// UnmarshalJSON splits the object into attributes and payment methods.
func (p *PaymentAccount) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var methods []PaymentMethod
	if m, ok := raw[paymentMethodKey]; ok {
		if err := json.Unmarshal(m, &methods); err != nil {
			return fmt.Errorf("paymentmethod: %w", err)
		}
		delete(raw, paymentMethodKey)
	}

	attrs := make(Attributes, len(raw))
	for k, v := range raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("attribute %s: %w", k, err)
		}
		attrs[k] = val
	}

	p.Attributes = attrs
	p.Methods = methods
	return nil
}

// ProfileRecord is a user's multi-part profile. A nil section is absent.
type ProfileRecord struct {
	Profile    Attributes      `json:"p_profile"`
	Social     []SocialLink    `json:"p_socials"`
	Categories []CategoryID    `json:"p_categories"`
	Portfolio  *Portfolio      `json:"p_portfolios"`
	Payment    *PaymentAccount `json:"p_paymentaccounts"`
}

// ProfileEnvelope is the body of GET /user/profile/{userId}.
type ProfileEnvelope struct {
	ProfileParts ProfileRecord `json:"profileParts"`
}

// Clone returns a copy whose slices, maps and pointers are not shared with r.
func (r ProfileRecord) Clone() ProfileRecord {
	out := ProfileRecord{
		Profile: r.Profile.Clone(),
	}
	if r.Social != nil {
		out.Social = append([]SocialLink{}, r.Social...)
	}
	if r.Categories != nil {
		out.Categories = append([]CategoryID{}, r.Categories...)
	}
	if r.Portfolio != nil {
		p := *r.Portfolio
		if p.FilePaths != nil {
			p.FilePaths = append([]FileDescriptor{}, p.FilePaths...)
		}
		out.Portfolio = &p
	}
	if r.Payment != nil {
		p := PaymentAccount{Attributes: r.Payment.Attributes.Clone()}
		if r.Payment.Methods != nil {
			p.Methods = append([]PaymentMethod{}, r.Payment.Methods...)
		}
		out.Payment = &p
	}
	return out
}

// Section returns the data held for s, or nil when absent.
func (r ProfileRecord) Section(s Section) any {
	switch s {
	case SectionProfile:
		if r.Profile == nil {
			return nil
		}
		return r.Profile
	case SectionSocial:
		if r.Social == nil {
			return nil
		}
		return r.Social
	case SectionCategories:
		if r.Categories == nil {
			return nil
		}
		return r.Categories
	case SectionPortfolio:
		if r.Portfolio == nil {
			return nil
		}
		return r.Portfolio
	case SectionPayment:
		if r.Payment == nil {
			return nil
		}
		return r.Payment
	}
	return nil
}

// SetSection replaces the data of one section. A nil data clears it.
// Values and pointers of the section type are both accepted, as are the
// untyped forms produced by encoding/json for profile and categories.
func (r *ProfileRecord) SetSection(s Section, data any) error {
	switch s {
	case SectionProfile:
		switch v := data.(type) {
		case nil:
			r.Profile = nil
		case Attributes:
			r.Profile = v
		case map[string]any:
			r.Profile = Attributes(v)
		default:
			return sectionTypeError(s, data)
		}
	case SectionSocial:
		switch v := data.(type) {
		case nil:
			r.Social = nil
		case []SocialLink:
			r.Social = v
		default:
			return sectionTypeError(s, data)
		}
	case SectionCategories:
		switch v := data.(type) {
		case nil:
			r.Categories = nil
		case []CategoryID:
			r.Categories = v
		case []string:
			ids := make([]CategoryID, len(v))
			for i, id := range v {
				ids[i] = CategoryID(id)
			}
			r.Categories = ids
		default:
			return sectionTypeError(s, data)
		}
	case SectionPortfolio:
		switch v := data.(type) {
		case nil:
			r.Portfolio = nil
		case Portfolio:
			r.Portfolio = &v
		case *Portfolio:
			r.Portfolio = v
		default:
			return sectionTypeError(s, data)
		}
	case SectionPayment:
		switch v := data.(type) {
		case nil:
			r.Payment = nil
		case PaymentAccount:
			r.Payment = &v
		case *PaymentAccount:
			r.Payment = v
		default:
			return sectionTypeError(s, data)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownSection, int(s))
	}
	return nil
}

// DecodeSection decodes the JSON form of one section into its Go type.
// A JSON null decodes to nil.
func DecodeSection(s Section, raw []byte) (any, error) {
	var (
		out any
		err error
	)
	switch s {
	case SectionProfile:
		var v Attributes
		err = json.Unmarshal(raw, &v)
		if v != nil {
			out = v
		}
	case SectionSocial:
		var v []SocialLink
		err = json.Unmarshal(raw, &v)
		if v != nil {
			out = v
		}
	case SectionCategories:
		var v []CategoryID
		err = json.Unmarshal(raw, &v)
		if v != nil {
			out = v
		}
	case SectionPortfolio:
		var v *Portfolio
		err = json.Unmarshal(raw, &v)
		if v != nil {
			out = v
		}
	case SectionPayment:
		var v *PaymentAccount
		err = json.Unmarshal(raw, &v)
		if v != nil {
			out = v
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownSection, int(s))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s, err)
	}
	return out, nil
}

func sectionTypeError(s Section, data any) error {
	return fmt.Errorf("%w: %s cannot hold %T", ErrSectionType, s, data)
}
