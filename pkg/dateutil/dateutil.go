package dateutil

import (
	"time"
)

// FullRetirementAgeMonths returns the Social Security full retirement age
// for a birth year as whole years plus extra months.
func FullRetirementAgeMonths(birthYear int) (years, months int) {
	switch {
	case birthYear <= 1937:
		return 65, 0
	case birthYear <= 1942:
		return 65, (birthYear - 1937) * 2
	case birthYear <= 1954:
		return 66, 0
	case birthYear <= 1959:
		return 66, (birthYear - 1954) * 2
	default: // 1960 and later
		return 67, 0
	}
}

// GetRMDAge returns the age when RMDs start for a given birth year
func GetRMDAge(birthYear int) int {
	switch {
	case birthYear <= 1950:
		return 72
	case birthYear >= 1951 && birthYear <= 1959:
		return 73
	default: // 1960 and later
		return 75
	}
}

// IsRMDAge reports whether required distributions apply at age.
func IsRMDAge(birthYear, age int) bool {
	return age >= GetRMDAge(birthYear)
}

// IsOnOrAfter reports whether date falls on or after cutoff, comparing calendar days only.
func IsOnOrAfter(date, cutoff time.Time) bool {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	c := time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(c)
}
