package handlers

import "unicode"

// passwordIssues lists what keeps a password from being acceptable. Empty
// means acceptable.
func passwordIssues(password string) []string {
	var issues []string
	if len(password) < 8 {
		issues = append(issues, "password must be at least 8 characters")
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if !hasLower {
		issues = append(issues, "password must contain a lowercase letter")
	}
	if !hasUpper {
		issues = append(issues, "password must contain an uppercase letter")
	}
	if !hasDigit {
		issues = append(issues, "password must contain a digit")
	}
	if !hasSpecial {
		issues = append(issues, "password must contain a special character")
	}
	return issues
}
