package util

import "strings"

// MaskIdentifier keeps the last four characters of an identity number for audit records.
func MaskIdentifier(id string) string {
	id = strings.TrimSpace(id)
	if len(id) <= 4 {
		return strings.Repeat("*", len(id))
	}
	return strings.Repeat("*", len(id)-4) + id[len(id)-4:]
}

// SplitName splits a full name into first name and the rest.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
