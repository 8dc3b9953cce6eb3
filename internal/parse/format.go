package parse

import (
	"fmt"
	"regexp"
	"time"
)

var nonDigitRe = regexp.MustCompile(`\D`)

// Phone renders 10-digit numbers as "(555) 123-4567" and returns anything else unchanged.
func Phone(raw string) string {
	if raw == "" {
		return ""
	}
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if len(digits) == 10 {
		return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
	}
	return raw
}

// PhoneURI returns a tel: link for raw, or "" when there is no number.
func PhoneURI(raw string) string {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if digits == "" {
		return ""
	}
	return "tel:" + digits
}

// Price renders a dollar amount, e.g. 3.5 -> "$3.50".
func Price(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// Hours renders an occurrence window as "Mon, 10:00 AM - 2:00 PM".
// The weekday is taken from the open time.
func Hours(open, closeAt time.Time) string {
	return fmt.Sprintf("%s, %s - %s", open.Format("Mon"), open.Format("3:04 PM"), closeAt.Format("3:04 PM"))
}
