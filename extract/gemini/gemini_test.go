package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   string
		exp  string
	}{
		{
			name: "bare_json",
			in:   `{"name": "Jane"}`,
			exp:  `{"name": "Jane"}`,
		},
		{
			name: "json_fence",
			in:   "```json\n{\"name\": \"Jane\"}\n```",
			exp:  `{"name": "Jane"}`,
		},
		{
			name: "plain_fence",
			in:   "```\n{\"name\": \"Jane\"}\n```",
			exp:  `{"name": "Jane"}`,
		},
		{
			name: "surrounding_whitespace",
			in:   "  \n```json\n{\"name\": \"Jane\"}\n```\n ",
			exp:  `{"name": "Jane"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.exp, extractJSON(tc.in))
		})
	}
}

func TestParseProfile(t *testing.T) {
	t.Parallel()

	raw := "```json\n" + `{
	  "name": "Jane Doe",
	  "age": 31,
	  "general_proficiency": "senior",
	  "tech_stack": "Go, PostgreSQL",
	  "work_experience": [
	    {
	      "company": "Acme",
	      "role": "Software Engineer",
	      "months_of_service": 24,
	      "is_internship": false,
	      "has_overlap": false
	    }
	  ]
	}` + "\n```"

	profile, err := parseProfile(raw)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", profile.Name)
	assert.Equal(t, 31, profile.Age)
	assert.Equal(t, "senior", profile.GeneralProficiency)
	require.Len(t, profile.WorkExperience, 1)
	assert.Equal(t, "Acme", profile.WorkExperience[0].Company)
	assert.Equal(t, 24, profile.WorkExperience[0].MonthsOfService)
}

func TestParseProfileErrors(t *testing.T) {
	t.Parallel()

	_, err := parseProfile("not json at all")
	assert.ErrorContains(t, err, "parse gemini response")

	_, err = parseProfile(`{"age": 31}`)
	assert.ErrorContains(t, err, "missing the candidate name")
}

func TestNewExtractorRequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewExtractor(t.Context(), "  ", "")
	assert.ErrorContains(t, err, "api key is required")
}
