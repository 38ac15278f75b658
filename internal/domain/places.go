package domain

import (
	"slices"

	"golang.org/x/text/unicode/norm"
)

// Continent groups the countries that belong to it.
type Continent struct {
	Name      string
	Countries []string
}

// continents is ordered; each country appears exactly once. Countries are
// listed by their canonical alias-table name.
var continents = []Continent{
	{Name: "Africa", Countries: []string{
		"Algeria", "Abyssinia", "Angola", "Benin", "Botswana", "Burkina Faso", "Burundi",
		"Cameroon", "Cape Verde", "Central African Republic", "Chad", "Comoros",
		"Republic of the Congo", "Democratic Republic of the Congo", "Côte d'Ivoire",
		"Djibouti", "Egypt", "Equatorial Guinea", "Eritrea", "Ethiopia", "Gabon", "The Gambia",
		"Ghana", "Guinea", "Guinea-Bissau", "Kenya", "Lesotho", "Liberia", "Libya",
		"Madagascar", "Malawi", "Mali", "Mauritania", "Mauritius", "Morocco", "Mozambique",
		"Namibia", "Niger", "Nigeria", "Rwanda", "São Tomé and Príncipe", "Senegal",
		"Seychelles", "Sierra Leone", "Somalia", "South Africa", "South Sudan", "Sudan",
		"Swaziland", "Tanzania", "Togo", "Tunisia", "Uganda", "Western Sahara", "Zambia",
		"Zaire", "Zimbabwe",
	}},
	{Name: "Asia", Countries: []string{
		"Afghanistan", "Armenia", "Azerbaijan", "Bahrain", "Bangladesh", "Bhutan", "Brunei",
		"Cambodia", "China", "Taiwan", "East Timor", "India", "Indonesia", "Iran", "Iraq",
		"Israel", "Palestine", "Japan", "Jordan", "Kazakhstan", "Kuwait", "Kyrgyzstan",
		"Laos", "Lebanon", "Malaysia", "Maldives", "Mongolia", "Myanmar", "Nepal",
		"North Korea", "Oman", "Pakistan", "Philippines", "Qatar", "Russia", "Saudi Arabia",
		"Singapore", "South Korea", "Sri Lanka", "Syria", "Tajikistan", "Thailand", "Tibet",
		"Turkey", "Turkmenistan", "United Arab Emirates", "Uzbekistan", "Vietnam", "Yemen",
	}},
	{Name: "Europe", Countries: []string{
		"Albania", "Andorra", "Austria", "Belarus", "Belgium", "Bosnia and Herzegovina",
		"Bulgaria", "Croatia", "Cyprus", "Czech Republic", "Denmark", "Estonia", "Finland",
		"France", "Georgia", "Germany", "Greece", "Hungary", "Iceland", "Ireland",
		"Italy", "Latvia", "Liechtenstein", "Lithuania", "Luxembourg", "Republic of Macedonia",
		"Malta", "Moldova", "Monaco", "Montenegro", "Netherlands", "Norway", "Poland",
		"Portugal", "Romania", "San Marino", "Serbia", "Slovakia", "Slovenia", "Spain",
		"Sweden", "Switzerland", "Ukraine", "United Kingdom", "Vatican City",
	}},
	{Name: "North America", Countries: []string{
		"Antigua and Barbuda", "Bahamas", "Barbados", "Belize", "Canada", "Cayman Islands",
		"Costa Rica", "Cuba", "Dominica", "Dominican Republic", "El Salvador", "Greenland",
		"Grenada", "Guatemala", "Haiti", "Honduras", "Jamaica", "Mexico", "Nicaragua", "Panama",
		"Saint Kitts and Nevis", "Saint Lucia", "Saint Vincent and the Grenadines",
		"Trinidad and Tobago", "United States", "Turks and Caicos", "American Samoa",
		"Cook Islands", "French Polynesia", "Niue", "Pitcairn Islands", "Samoa", "Tokelau",
		"Tonga", "Tuvalu", "Wallis and Futuna Islands",
	}},
	{Name: "South America", Countries: []string{
		"Argentina", "Bolivia", "Brazil", "Chile", "Colombia", "Ecuador", "French Guiana",
		"Guyana", "Paraguay", "Peru", "Suriname", "Uruguay", "Venezuela",
	}},
	{Name: "Australia", Countries: []string{
		"Australia", "New Zealand", "Christmas Island", "Cocos Islands", "Fiji",
	}},
}

// aliases lists interchangeable names; the first entry of a group is canonical.
var aliases = [][]string{
	{"United States", "United States of America", "USA"},
	{"Ireland", "Republic of Ireland"},
}

// NormalizePlace returns the canonical spelling of a place name, or name
// itself when it has no known alias.
func NormalizePlace(name string) string {
	key := norm.NFC.String(name)
	for _, group := range aliases {
		if slices.Contains(group, key) {
			return group[0]
		}
	}
	return name
}

// ContinentOf looks a name up in the continent table. For a continent name
// it returns the continent and a copy of its country list; for a country it
// returns the owning continent and a nil list. ok is false when the name is
// neither.
func ContinentOf(name string) (continent string, countries []string, ok bool) {
	key := norm.NFC.String(name)
	for _, c := range continents {
		if c.Name == key {
			return c.Name, slices.Clone(c.Countries), true
		}
	}
	canonical := NormalizePlace(key)
	for _, c := range continents {
		if slices.Contains(c.Countries, key) || slices.Contains(c.Countries, canonical) {
			return c.Name, nil, true
		}
	}
	return "", nil, false
}

// DeriveContinent returns the continent for an address's country field.
// When country is itself a continent name, country is returned unchanged.
func DeriveContinent(country string) string {
	continent, countries, ok := ContinentOf(country)
	if !ok {
		return ""
	}
	if countries != nil {
		return country
	}
	return continent
}

// Continents returns a copy of the ordered continent table.
func Continents() []Continent {
	out := make([]Continent, len(continents))
	for i, c := range continents {
		out[i] = Continent{Name: c.Name, Countries: slices.Clone(c.Countries)}
	}
	return out
}
