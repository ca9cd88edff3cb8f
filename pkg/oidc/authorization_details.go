package oidc

import (
	"encoding/json"
	"reflect"
	"sort"
)

// AuthorizationDetail is a single entry of the authorization_details
// request and token parameter of RFC 9396. Fields outside the common
// set are kept in Custom and survive a marshal round trip.
type AuthorizationDetail struct {
	Type       string   `json:"type"`
	Locations  []string `json:"locations,omitempty"`
	Actions    []string `json:"actions,omitempty"`
	Datatypes  []string `json:"datatypes,omitempty"`
	Identifier string   `json:"identifier,omitempty"`
	Privileges []string `json:"privileges,omitempty"`

	Custom map[string]any `json:"-"`
}

type adAlias AuthorizationDetail

func (d *AuthorizationDetail) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, (*adAlias)(d)); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, known := range []string{"type", "locations", "actions", "datatypes", "identifier", "privileges"} {
		delete(all, known)
	}
	if len(all) > 0 {
		d.Custom = all
	}
	return nil
}

func (d AuthorizationDetail) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(adAlias(d))
	if err != nil {
		return nil, err
	}
	if len(d.Custom) == 0 {
		return base, nil
	}
	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range d.Custom {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// Similar reports whether two details describe the same authorization,
// ignoring the order of the list valued fields.
func (d *AuthorizationDetail) Similar(other *AuthorizationDetail) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.Type == other.Type &&
		d.Identifier == other.Identifier &&
		equalUnordered(d.Locations, other.Locations) &&
		equalUnordered(d.Actions, other.Actions) &&
		equalUnordered(d.Datatypes, other.Datatypes) &&
		equalUnordered(d.Privileges, other.Privileges) &&
		reflect.DeepEqual(d.Custom, other.Custom)
}

func equalUnordered(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	ac := make([]string, len(a))
	bc := make([]string, len(b))
	copy(ac, a)
	copy(bc, b)
	sort.Strings(ac)
	sort.Strings(bc)
	for i := range ac {
		if ac[i] != bc[i] {
			return false
		}
	}
	return true
}

// AuthorizationDetails is the list form used in requests and tokens.
type AuthorizationDetails []*AuthorizationDetail

// UnmarshalText parses the single form parameter carrying the JSON array,
// needed for schema based form decoding of the authorize request.
func (a *AuthorizationDetails) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*a = nil
		return nil
	}
	return json.Unmarshal(text, (*[]*AuthorizationDetail)(a))
}

// Similar reports whether both lists describe the same authorizations,
// in any order.
func (a AuthorizationDetails) Similar(other AuthorizationDetails) bool {
	if len(a) != len(other) {
		return false
	}
	matched := make([]bool, len(other))
next:
	for _, d := range a {
		for i, o := range other {
			if !matched[i] && d.Similar(o) {
				matched[i] = true
				continue next
			}
		}
		return false
	}
	return true
}

// Types returns the set of detail types, used to validate a request
// against the types a client registered.
func (a AuthorizationDetails) Types() []string {
	types := make([]string, 0, len(a))
	for _, d := range a {
		types = append(types, d.Type)
	}
	return types
}
