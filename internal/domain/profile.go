package domain

import (
	"strconv"
	"strings"
)

// Gender codes after normalization
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// Profile is the demographic data encoded in a display name such as "Kim/85/남/Seoul".
type Profile struct {
	Name      string
	BirthYear int
	// Gender is GenderMale, GenderFemale or empty when the code was not recognized.
	Gender string
	Region string
}

// ParseProfile splits a slash-delimited display name into a Profile.
// At least name, birth year and gender code are required and the birth year
// must be numeric; two-digit years above 50 map to 19xx, the rest to 20xx.
func ParseProfile(userName string) (Profile, bool) {
	parts := strings.Split(userName, "/")
	if len(parts) < 3 {
		return Profile{}, false
	}

	year, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || year < 0 {
		return Profile{}, false
	}
	if year < 100 {
		if year > 50 {
			year += 1900
		} else {
			year += 2000
		}
	}

	p := Profile{
		Name:      strings.TrimSpace(parts[0]),
		BirthYear: year,
		Gender:    NormalizeGender(parts[2]),
	}
	if len(parts) > 3 {
		p.Region = strings.TrimSpace(parts[3])
	}
	return p, true
}

// NormalizeGender maps M/F/남/여 to GenderMale/GenderFemale and anything else to "".
func NormalizeGender(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "M", "남":
		return GenderMale
	case "F", "여":
		return GenderFemale
	default:
		return ""
	}
}

// AgeIn returns the age of the profile owner in the given year.
func (p Profile) AgeIn(year int) int {
	return year - p.BirthYear
}
