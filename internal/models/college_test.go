package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugifyRequirementHyphenatesWords(t *testing.T) {
	cases := map[string]string{
		"Barangay Clearance":        "barangay-clearance",
		"Good Moral  Certificate":   "good-moral-certificate",
		"Form 137-A":                "form-137-a",
		"  Recommendation Letter  ": "recommendation-letter",
		"ID (2x2)":                  "id-2x2",
	}

	for label, want := range cases {
		require.Equal(t, want, SlugifyRequirement(label))
	}
}

func TestRequirementSetIncludesCustomRequirements(t *testing.T) {
	college := College{}
	college.SetRequirementIDs([]string{"high_school_transcript"})
	college.SetCustomRequirements([]string{"Barangay Clearance"})

	set := college.RequirementSet()
	require.Len(t, set, 2)
	require.Equal(t, "barangay-clearance", set[1].ID)
	require.Equal(t, "Barangay Clearance", set[1].Label)
}
