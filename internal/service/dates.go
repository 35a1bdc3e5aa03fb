package service

import (
	"fmt"
	"strings"
	"time"
)

// registryDateLayout is day/month/year with one or two digit day and month
const registryDateLayout = "2/1/2006"

// ParseRegistryDate parses a day/month/year date such as 01/03/2000 or 1/3/2000
func ParseRegistryDate(value string) (time.Time, error) {
	t, err := time.Parse(registryDateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected dd/mm/yyyy", value)
	}
	return t, nil
}

// CompletedYears returns the age in whole years on the date of incidence
func CompletedYears(birth, incidence time.Time) int {
	age := incidence.Year() - birth.Year()
	if incidence.Month() < birth.Month() ||
		(incidence.Month() == birth.Month() && incidence.Day() < birth.Day()) {
		age--
	}
	return age
}

// AgeAtIncidence computes the age from the two textual dates
func AgeAtIncidence(birthDate, incidenceDate string) (int, error) {
	birth, err := ParseRegistryDate(birthDate)
	if err != nil {
		return 0, err
	}
	incidence, err := ParseRegistryDate(incidenceDate)
	if err != nil {
		return 0, err
	}
	return CompletedYears(birth, incidence), nil
}
