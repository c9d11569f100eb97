package services

import (
	"strings"
	"unicode"
)

const minPasswordLength = 8

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "12345678": {}, "123456789": {},
	"1234567890": {}, "qwerty123": {}, "qwertyuiop": {}, "iloveyou": {}, "sunshine": {},
	"princess": {}, "football": {}, "baseball": {}, "welcome1": {}, "admin123": {},
	"abc12345": {}, "letmein1": {}, "trustno1": {}, "passw0rd": {}, "11111111": {},
	"00000000": {}, "azertyui": {}, "motdepasse": {}, "changeme": {}, "superman": {},
}

// ValidatePassword checks a new password and returns the message keys of
// every rule it breaks.
func ValidatePassword(password, username, email string) []string {
	var problems []string

	if len([]rune(password)) < minPasswordLength {
		problems = append(problems, "This password is too short. It must contain at least 8 characters.")
	}
	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		problems = append(problems, "This password is entirely numeric.")
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		problems = append(problems, "This password is too common.")
	}

	lower := strings.ToLower(password)
	local := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	switch {
	case tooSimilar(lower, strings.ToLower(username)):
		problems = append(problems, "The password is too similar to the username.")
	case tooSimilar(lower, local):
		problems = append(problems, "The password is too similar to the email address.")
	}
	return problems
}

// tooSimilar flags a password that contains the attribute, or is contained
// in it, once both are at least three characters long.
func tooSimilar(password, attribute string) bool {
	if len(attribute) < 3 || len(password) < 3 {
		return false
	}
	return strings.Contains(password, attribute) || strings.Contains(attribute, password)
}
