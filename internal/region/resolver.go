// Package region resolves freeform shipping-address lines to a US state
// code or a country name using ISO-3166 reference data.
package region

import (
	"fmt"
	"strings"

	"github.com/pariz/gountries"

	"github.com/eccentricworkshop/receiptflow/internal/model"
)

// Unknown is returned when no address line yields a state or country.
const Unknown = "Unknown"

// Resolver holds the ISO lookup tables. Build one per run with NewResolver;
// it is read-only after construction.
type Resolver struct {
	countryByName map[string]string // lowercase full name -> alpha-2
	countryByCode map[string]string // alpha-2 -> full name
	stateByName   map[string]string // full name -> bare subdivision code
	stateByCode   map[string]string // bare subdivision code -> full name
}

// NewResolver builds the lookup tables from the embedded ISO dataset.
func NewResolver() (*Resolver, error) {
	query := gountries.New()

	r := &Resolver{
		countryByName: make(map[string]string),
		countryByCode: make(map[string]string),
		stateByName:   make(map[string]string),
		stateByCode:   make(map[string]string),
	}

	for _, country := range query.FindAllCountries() {
		name := country.Name.Common
		if name == "" || country.Alpha2 == "" {
			continue
		}
		r.countryByName[strings.ToLower(name)] = country.Alpha2
		r.countryByCode[country.Alpha2] = name
	}

	us, err := query.FindCountryByAlpha("US")
	if err != nil {
		return nil, fmt.Errorf("loading US subdivisions: %w", err)
	}
	for _, sub := range us.SubDivisions() {
		code := strings.TrimPrefix(sub.Code, "US-")
		if code == "" || sub.Name == "" {
			continue
		}
		r.stateByName[sub.Name] = code
		r.stateByCode[code] = sub.Name
	}

	return r, nil
}

// Resolve inspects lines 3-5 of the address and returns a two-letter US
// state code, a country's full name, or Unknown.
//
// Every candidate line is evaluated; a later line can overwrite what an
// earlier one found. Within a line the checks are ordered and the first hit
// wins: state code in second-to-last position, then full state name in the
// last two tokens, then country code in the last token, then the whole line
// as a country name.
//
// A Washington match returns the full original line rather than "WA". The
// business reads city and postal code for in-state orders straight off the
// report, so the whole line is kept for that one state.
func (r *Resolver) Resolve(addr *model.Address) string {
	if addr == nil {
		return Unknown
	}

	state := Unknown
	country := Unknown
	var washingtonLine string

	for _, line := range addr.CandidateLines() {
		if line == "" {
			continue
		}
		parts := strings.Fields(line)

		switch {
		case len(parts) >= 2:
			secondLast := parts[len(parts)-2]
			lastTwo := strings.Join(parts[len(parts)-2:], " ")
			last := parts[len(parts)-1]

			if _, ok := r.stateByCode[secondLast]; ok {
				state = secondLast
				if state == "WA" {
					washingtonLine = line
				}
			} else if code, ok := r.stateByName[lastTwo]; ok {
				state = code
			} else if name, ok := r.countryByCode[last]; ok {
				country = name
			} else if code, ok := r.countryByName[strings.ToLower(strings.Join(parts, " "))]; ok {
				country = r.countryByCode[code]
			}

		case len(parts) == 1:
			if code, ok := r.countryByName[strings.ToLower(parts[0])]; ok {
				country = r.countryByCode[code]
			}
		}
	}

	if state == "WA" && washingtonLine != "" {
		return washingtonLine
	}
	if state != Unknown {
		return state
	}
	return country
}
