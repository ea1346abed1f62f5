package services

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sbilibin2017/gw-ledger/internal/models"
)

const (
	maxEmailLength    = 254
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores input past 72 bytes
	maxTextLength     = 255
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,50}$`)

func validateRegistration(username, email, password string) error {
	fields := make(map[string]string)

	if !usernamePattern.MatchString(username) {
		fields["username"] = "must be 3-50 characters of letters, digits, '_', '.' or '-'"
	}

	if len(email) == 0 || len(email) > maxEmailLength {
		fields["email"] = "must be a valid email address"
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		fields["email"] = "must be a valid email address"
	}

	if msg := checkPassword(password); msg != "" {
		fields["password"] = msg
	}

	return models.NewValidationError(fields)
}

func checkPassword(password string) string {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return "must be 8-72 bytes long"
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return "must contain at least one letter and one digit"
	}
	return ""
}

// normalizeTransactionText trims category and description, applies the default
// category and checks lengths.
func normalizeTransactionText(category, description string) (string, string, error) {
	fields := make(map[string]string)

	category = strings.TrimSpace(category)
	if category == "" {
		category = models.DefaultCategory
	}
	if utf8.RuneCountInString(category) > maxTextLength {
		fields["category"] = "must be at most 255 characters"
	}

	description = strings.TrimSpace(description)
	switch {
	case description == "":
		fields["description"] = "is required"
	case utf8.RuneCountInString(description) > maxTextLength:
		fields["description"] = "must be at most 255 characters"
	}

	return category, description, models.NewValidationError(fields)
}

// normalizePage applies listing defaults and rejects out-of-range values.
func normalizePage(filter models.TransactionFilter, page models.Page) (models.Page, error) {
	fields := make(map[string]string)

	switch {
	case page.Number == 0:
		page.Number = 1
	case page.Number < 0:
		fields["page"] = "must be positive"
	}

	switch {
	case page.Size == 0:
		page.Size = models.DefaultPageSize
	case page.Size < 0 || page.Size > models.MaxPageSize:
		fields["page_size"] = "must be between 1 and 100"
	}

	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		fields["to"] = "must be after from"
	}

	return page, models.NewValidationError(fields)
}
