package identity

import (
	"fmt"

	"github.com/palmora/reading-gate/models"
)

// Ordered alternate field names for each logical identity field. Different
// identity-service versions expose the same value under different keys; the
// first non-empty match wins, checked against the validation payload before
// the profile payload.
var (
	subjectAliases = []string{"subject_id", "account_id", "user_id", "id"}
	emailAliases   = []string{"email", "user_email", "mail"}
	nameAliases    = []string{"name", "display_name", "full_name", "first_name"}
	dobAliases     = []string{"date_of_birth", "dob", "birth_date", "birthdate"}
)

// mergeIdentity computes the union of required identity fields from the
// validation payload and the extended profile. Each logical field falls back
// across its alias list; a field present in both payloads resolves to the
// validation payload's value.
func mergeIdentity(validation, profile map[string]any) models.Identity {
	return models.Identity{
		SubjectID:   firstField(subjectAliases, validation, profile),
		Email:       firstField(emailAliases, validation, profile),
		Name:        firstField(nameAliases, validation, profile),
		DateOfBirth: firstField(dobAliases, validation, profile),
	}
}

func firstField(aliases []string, payloads ...map[string]any) string {
	for _, payload := range payloads {
		for _, alias := range aliases {
			if v := stringValue(payload[alias]); v != "" {
				return v
			}
		}
	}
	return ""
}

// stringValue renders the loosely typed payload value as a string. Numeric
// account ids arrive as JSON numbers and must not be lost to a type check.
func stringValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		if value == float64(int64(value)) {
			return fmt.Sprintf("%d", int64(value))
		}
		return fmt.Sprintf("%v", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
