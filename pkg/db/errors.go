package db

import "strings"

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// failure. With a constraint name the check narrows to that constraint,
// otherwise any duplicate-key error matches.
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	text := err.Error()
	if constraint != "" {
		return strings.Contains(text, constraint)
	}
	return strings.Contains(text, "duplicate key value")
}
