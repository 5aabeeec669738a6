package utils

import (
	"strings"

	"creatorpulse/models"
)

// Interpolate replaces every occurrence of ${creator_name} in text with name.
func Interpolate(text, name string) string {
	return strings.ReplaceAll(text, models.CreatorNamePlaceholder, name)
}
