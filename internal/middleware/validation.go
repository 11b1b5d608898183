package middleware

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Neeraj110/chatApp/internal/model"
)

// Request field validation, applied at the HTTP boundary before any handler
// logic runs. Each function returns a client-facing error message.

const (
	minNameLen      = 3
	maxNameLen      = 30
	minPasswordLen  = 4
	minGroupNameLen = 3
	maxGroupNameLen = 50
)

// ValidateName checks a display name after trimming.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < minNameLen {
		return "", errors.New("Name must be at least 3 characters")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", errors.New("Name cannot exceed 30 characters")
	}
	return name, nil
}

// ValidateEmail normalizes and checks an email address.
func ValidateEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", errors.New("Please enter a valid email")
	}
	return email, nil
}

// ValidatePassword checks a raw password.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return errors.New("Password must be at least 4 characters")
	}
	return nil
}

// ValidateGroupName checks a group name after trimming.
func ValidateGroupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < minGroupNameLen {
		return "", errors.New("Group name must be at least 3 characters")
	}
	if utf8.RuneCountInString(name) > maxGroupNameLen {
		return "", errors.New("Group name cannot exceed 50 characters")
	}
	return name, nil
}

// ValidateContent checks message text length in characters, not bytes. Empty
// content is allowed here; the message service enforces text-or-media.
func ValidateContent(content string) error {
	if utf8.RuneCountInString(content) > model.MaxContentLength {
		return errors.New("Content cannot exceed 2000 characters")
	}
	return nil
}

// ValidateObjectID parses a hex object id, returning message for the given
// field label on failure, e.g. "Invalid conversation ID".
func ValidateObjectID(raw, label string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, errors.New("Invalid " + label)
	}
	return id, nil
}
