package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicoalimin/talentscan/db/models"
)

func TestCandidateProfileRollup(t *testing.T) {
	t.Parallel()

	p := &CandidateProfile{
		Name:                 "Jane Doe",
		Age:                  31,
		Skillset:             "Go, SQL, Kubernetes",
		HighConfidenceSkills: "Go, SQL",
		LowConfidenceSkills:  "Kubernetes",
		TechStack:            "Go, PostgreSQL",
		GeneralProficiency:   "senior",
		AISummary:            "Backend engineer with platform experience.",
		WorkExperience: []WorkExperienceEntry{
			{
				Company:         "Acme",
				Role:            "Software Engineer",
				MonthsOfService: 24,
				StartDate:       "2019-01",
				EndDate:         "2021-01",
			},
			{
				Company:         "Acme",
				Role:            "Senior Software Engineer",
				MonthsOfService: 18,
				StartDate:       "2021-01",
				EndDate:         "2022-07",
			},
			{
				// Freelancing alongside the Acme stint. Counted as a
				// company and a role, but not towards total months.
				Company:         "Freelance",
				Role:            "Software Engineer",
				MonthsOfService: 12,
				HasOverlap:      true,
			},
			{
				Role:            "Open Source Maintainer",
				MonthsOfService: 6,
			},
		},
	}

	c := p.Candidate("jane_doe.pdf")

	assert.Equal(t, "jane_doe.pdf", c.Filename)
	assert.Equal(t, "Jane Doe", c.Name)
	assert.Equal(t, 31, c.Age)
	assert.Equal(t, "senior", c.GeneralProficiency)

	// 24 + 18 + 6; the overlapping entry doesn't add to the total.
	assert.Equal(t, 48, c.TotalMonthsExperience)
	// Acme counted once, the entry without a company not at all.
	assert.Equal(t, 2, c.TotalCompanies)
	// Distinct roles in first-seen order.
	assert.Equal(t,
		"Software Engineer, Senior Software Engineer, Open Source Maintainer",
		c.RolesServed)

	require.Len(t, c.WorkExperience, 4)
	assert.Equal(t, "Acme", c.WorkExperience[0].CompanyName)
	assert.True(t, c.WorkExperience[2].HasOverlap)
}

func TestCandidateProfileNoExperience(t *testing.T) {
	t.Parallel()

	p := &CandidateProfile{Name: "Fresh Grad"}
	c := p.Candidate("grad.txt")

	assert.Zero(t, c.TotalMonthsExperience)
	assert.Zero(t, c.TotalCompanies)
	assert.Empty(t, c.RolesServed)
	assert.Empty(t, c.WorkExperience)
}

func TestYearsOfExperience(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, YearsOfExperience(&models.Candidate{TotalMonthsExperience: 11}))
	assert.Equal(t, 1, YearsOfExperience(&models.Candidate{TotalMonthsExperience: 12}))
	assert.Equal(t, 4, YearsOfExperience(&models.Candidate{TotalMonthsExperience: 50}))
}
