package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
)

var (
	placeRegex       = regexp.MustCompile(`^[\p{L}\s'-]+$`)
	nameRegex        = regexp.MustCompile(`^[\p{L}\s'-]+$`)
	nationalityRegex = regexp.MustCompile(`^[\p{L}\s]{2,50}$`)
	documentRegex    = regexp.MustCompile(`^[A-Za-z0-9]{6,9}$`)
	seatRegex        = regexp.MustCompile(`^[1-9][0-9]?[A-F]$`)
	emailRegex       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneCharsRegex  = regexp.MustCompile(`^[0-9\s\-()+]+$`)
	nonDigitRegex    = regexp.MustCompile(`\D`)
)

const (
	MinPassengers     = 1
	MaxPassengers     = 9
	maxAgeYears       = 120
	maxSpecialRequest = 200
)

// Today truncates now to its calendar date at UTC midnight.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Place checks an origin or destination name. It returns "" when valid.
func Place(label, v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Sprintf("%s is required", label)
	}
	if !placeRegex.MatchString(v) {
		return fmt.Sprintf("%s may only contain letters, spaces, hyphens and apostrophes", label)
	}
	return ""
}

// Name checks a passenger given or family name.
func Name(label, v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Sprintf("%s is required", label)
	}
	if n := utf8.RuneCountInString(v); n < 2 || n > 50 {
		return fmt.Sprintf("%s must be between 2 and 50 characters", label)
	}
	if !nameRegex.MatchString(v) {
		return fmt.Sprintf("%s may only contain letters, spaces, hyphens and apostrophes", label)
	}
	return ""
}

// DateOfBirth checks that v is a past date implying an age of at most 120 years.
func DateOfBirth(label, v string, today time.Time) string {
	if strings.TrimSpace(v) == "" {
		return fmt.Sprintf("%s is required", label)
	}
	dob, err := domain.ParseDate(v)
	if err != nil {
		return fmt.Sprintf("%s is not a valid date", label)
	}
	if dob.After(today) {
		return fmt.Sprintf("%s cannot be in the future", label)
	}
	if ageOn(dob, today) > maxAgeYears {
		return fmt.Sprintf("%s implies an age over %d years", label, maxAgeYears)
	}
	return ""
}

func ageOn(dob, today time.Time) int {
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age
}

func DocumentNumber(label, v string) string {
	if !documentRegex.MatchString(strings.TrimSpace(v)) {
		return fmt.Sprintf("%s must be 6 to 9 letters or digits", label)
	}
	return ""
}

func Nationality(label, v string) string {
	if !nationalityRegex.MatchString(strings.TrimSpace(v)) {
		return fmt.Sprintf("%s must be 2 to 50 letters", label)
	}
	return ""
}

func SpecialRequest(label, v string) string {
	if utf8.RuneCountInString(v) > maxSpecialRequest {
		return fmt.Sprintf("%s cannot exceed %d characters", label, maxSpecialRequest)
	}
	return ""
}

// SeatCode checks a row number (1-99) followed by a column letter A-F.
func SeatCode(v string) string {
	if !seatRegex.MatchString(strings.TrimSpace(v)) {
		return fmt.Sprintf("seat %q is not a valid seat code", v)
	}
	return ""
}

func Email(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "email is required"
	}
	if !emailRegex.MatchString(v) {
		return "email address is not valid"
	}
	return ""
}

func Phone(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "phone is required"
	}
	if !phoneCharsRegex.MatchString(v) {
		return "phone may only contain digits, spaces, hyphens, parentheses and a plus sign"
	}
	if n := len(nonDigitRegex.ReplaceAllString(v, "")); n < 7 || n > 15 {
		return "phone must contain between 7 and 15 digits"
	}
	return ""
}

func TotalPrice(total domain.Money) string {
	if total <= 0 {
		return "total price must be greater than zero"
	}
	if total > domain.MaxBookingTotal {
		return fmt.Sprintf("total price cannot exceed %s", domain.MaxBookingTotal)
	}
	return ""
}
