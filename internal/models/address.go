package models

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Placeholder recipient used when the directory has no resident name.
const (
	DefaultFirstName = "Current"
	DefaultLastName  = "Resident"
)

const zipLength = 5

// Zip5 is a five digit ZIP code. The directory sends it either as a JSON
// number or a string; both decode to the zero-padded text form.
type Zip5 string

// UnmarshalJSON accepts 75287, "75287", "02134" and null.
func (z *Zip5) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*z = ""
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to decode zip5: %w", err)
		}
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		*z = ""
		return nil
	}

	number, err := strconv.Atoi(raw)
	if err != nil || number < 0 || len(raw) > zipLength {
		return fmt.Errorf("invalid zip5 value %q", raw)
	}

	*z = Zip5(fmt.Sprintf("%05d", number))

	return nil
}

// Address is the resolved mailing address of a single-household target.
//
//	{"id": 34934369, "lat": 33.00684, "lng": -96.856996, "addr": "18788 Marsh Ln Apt 122",
//	 "addr2": null, "city": "Dallas", "state": "TX", "zip5": 75287, "county": "DENTON"}
type Address struct {
	ID        int     `json:"id"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Line1     string  `json:"addr"`
	Line2     string  `json:"addr2"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Zip5      Zip5    `json:"zip5"`
	County    string  `json:"county"`
	Precinct  string  `json:"precinct"`
	FirstName string  `json:"-"`
	LastName  string  `json:"-"`
}

// WithDefaultNames fills an empty recipient with the placeholder pair.
func (a Address) WithDefaultNames() Address {
	if strings.TrimSpace(a.FirstName) == "" {
		a.FirstName = DefaultFirstName
	}
	if strings.TrimSpace(a.LastName) == "" {
		a.LastName = DefaultLastName
	}

	return a
}

// Coordinates returns the geographic position of the address.
func (a Address) Coordinates() Coordinates {
	return Coordinates{Latitude: a.Latitude, Longitude: a.Longitude}
}

// FormattedAddress joins both street lines, or returns line 1 alone when line 2 is blank.
func (a Address) FormattedAddress() string {
	if strings.TrimSpace(a.Line2) == "" {
		return a.Line1
	}

	return a.Line1 + ", " + a.Line2
}

// CompareAddresses orders by zip, then city, then formatted address.
func CompareAddresses(lhs, rhs Address) int {
	return cmp.Or(
		cmp.Compare(lhs.Zip5, rhs.Zip5),
		cmp.Compare(lhs.City, rhs.City),
		cmp.Compare(lhs.FormattedAddress(), rhs.FormattedAddress()),
	)
}

// SortAddresses returns a sorted copy of addrs; the input is left untouched.
func SortAddresses(addrs []Address) []Address {
	sorted := slices.Clone(addrs)
	slices.SortStableFunc(sorted, CompareAddresses)

	return sorted
}
