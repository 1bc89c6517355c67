package utils

import "regexp"

var (
	// Kenyan MSISDN: country code 254 followed by exactly nine digits,
	// no "+" or separators. e.g. 254712345678
	kenyanPhone = regexp.MustCompile(`^254\d{9}$`)

	otpCode = regexp.MustCompile(`^\d{6}$`)
)

// IsValidPhone reports whether phone matches the 254XXXXXXXXX wire format
func IsValidPhone(phone string) bool {
	return kenyanPhone.MatchString(phone)
}

// IsValidOTPCode reports whether code is exactly 6 decimal digits
func IsValidOTPCode(code string) bool {
	return otpCode.MatchString(code)
}
