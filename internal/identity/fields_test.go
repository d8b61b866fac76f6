package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeIdentity_ValidationWins(t *testing.T) {
	ident := mergeIdentity(
		map[string]any{"account_id": "acc-77", "email": "lead@example.com"},
		map[string]any{"user_id": "acc-OTHER", "email": "other@example.com", "display_name": "Vera", "dob": "1990-04-12"},
	)

	assert.Equal(t, "acc-77", ident.SubjectID)
	assert.Equal(t, "lead@example.com", ident.Email)
	assert.Equal(t, "Vera", ident.Name)
	assert.Equal(t, "1990-04-12", ident.DateOfBirth)
}

func TestMergeIdentity_AliasOrder(t *testing.T) {
	// earlier alias wins within the same payload
	ident := mergeIdentity(map[string]any{
		"id":      "fallback",
		"user_id": "preferred",
	}, nil)

	assert.Equal(t, "preferred", ident.SubjectID)
}

func TestMergeIdentity_NumericAccountID(t *testing.T) {
	// JSON numbers decode to float64
	ident := mergeIdentity(map[string]any{"account_id": float64(4201)}, nil)

	assert.Equal(t, "4201", ident.SubjectID)
}

func TestMergeIdentity_Empty(t *testing.T) {
	ident := mergeIdentity(nil, nil)

	assert.ElementsMatch(t,
		[]string{"subject_id", "email", "name", "date_of_birth"},
		ident.MissingFields(),
	)
}
