package validator

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
)

func ValidateString(value string, minLength int, maxLength int) error {
	n := len(value)
	if n < minLength || n > maxLength {
		return fmt.Errorf("must contain from %d to %d characters", minLength, maxLength)
	}

	return nil
}

func ValidatePassword(value string) (err error) {
	// Define a general value rule that covers all conditions
	err = errors.New("value must be between 8 and 30 characters long, contain at least one digit, one lowercase letter, and one uppercase letter")

	if len(value) < 8 || len(value) > 30 {
		return
	}

	if !regexp.MustCompile(`[0-9]`).MatchString(value) {
		return
	}

	if !regexp.MustCompile(`[a-z]`).MatchString(value) {
		return
	}

	if !regexp.MustCompile(`[A-Z]`).MatchString(value) {
		return
	}

	return nil
}

func ValidateEmail(value string) error {
	if err := ValidateString(value, 6, 200); err != nil {
		return err
	}

	if _, err := mail.ParseAddress(value); err != nil {
		return fmt.Errorf("is not a valid email address")
	}

	return nil
}

func ValidatePrice(value int64) error {
	if value < 0 {
		return fmt.Errorf("must not be negative")
	}

	return nil
}

func ValidateLatitude(value float64) error {
	if value < -90 || value > 90 {
		return fmt.Errorf("must be between -90 and 90")
	}

	return nil
}

func ValidateLongitude(value float64) error {
	if value < -180 || value > 180 {
		return fmt.Errorf("must be between -180 and 180")
	}

	return nil
}
