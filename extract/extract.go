// Package extract turns resume documents into structured candidate data.
package extract

import (
	"context"
	"strings"

	"github.com/nicoalimin/talentscan/db/models"
)

// Document is a single resume file to extract data from.
type Document struct {
	Filename string
	MIMEType string
	Data     []byte
}

// WorkExperienceEntry is a single employment entry returned by the extraction
// model.
type WorkExperienceEntry struct {
	Company         string   `json:"company"`
	Role            string   `json:"role"`
	MonthsOfService int      `json:"months_of_service"`
	Skillset        string   `json:"skillset"`
	TechStack       string   `json:"tech_stack"`
	Projects        []string `json:"projects"`
	IsInternship    bool     `json:"is_internship"`
	HasOverlap      bool     `json:"has_overlap"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	Description     string   `json:"description"`
}

// CandidateProfile is the structured output of the extraction model for one
// resume.
type CandidateProfile struct {
	Name                 string                `json:"name"`
	Age                  int                   `json:"age"`
	Skillset             string                `json:"skillset"`
	HighConfidenceSkills string                `json:"high_confidence_skills"`
	LowConfidenceSkills  string                `json:"low_confidence_skills"`
	WorkExperience       []WorkExperienceEntry `json:"work_experience"`
	TechStack            string                `json:"tech_stack"`
	GeneralProficiency   string                `json:"general_proficiency"`
	AISummary            string                `json:"ai_summary"`
}

// Extractor extracts a structured candidate profile from a resume document.
type Extractor interface {
	Extract(ctx context.Context, doc *Document) (*CandidateProfile, error)
}

// Candidate converts the extracted profile into a candidate record for the
// given resume filename, aggregating the work experience entries into the
// per-candidate rollup fields.
func (p *CandidateProfile) Candidate(filename string) *models.Candidate {
	c := &models.Candidate{
		Filename:             filename,
		Name:                 p.Name,
		Age:                  p.Age,
		Skillset:             p.Skillset,
		HighConfidenceSkills: p.HighConfidenceSkills,
		LowConfidenceSkills:  p.LowConfidenceSkills,
		TechStack:            p.TechStack,
		GeneralProficiency:   p.GeneralProficiency,
		AISummary:            p.AISummary,
	}

	companies := map[string]struct{}{}
	rolesSeen := map[string]struct{}{}
	roles := []string{}
	for _, entry := range p.WorkExperience {
		// Overlapping stints run concurrently with an already counted one,
		// so they don't add to the total.
		if !entry.HasOverlap {
			c.TotalMonthsExperience += entry.MonthsOfService
		}
		if entry.Company != "" {
			companies[entry.Company] = struct{}{}
		}
		if entry.Role != "" {
			if _, ok := rolesSeen[entry.Role]; !ok {
				rolesSeen[entry.Role] = struct{}{}
				roles = append(roles, entry.Role)
			}
		}

		c.WorkExperience = append(c.WorkExperience, &models.WorkExperience{
			CompanyName:     entry.Company,
			Role:            entry.Role,
			MonthsOfService: entry.MonthsOfService,
			Skillset:        entry.Skillset,
			TechStack:       entry.TechStack,
			Projects:        entry.Projects,
			IsInternship:    entry.IsInternship,
			HasOverlap:      entry.HasOverlap,
			StartDate:       entry.StartDate,
			EndDate:         entry.EndDate,
			Description:     entry.Description,
		})
	}
	c.TotalCompanies = len(companies)
	c.RolesServed = strings.Join(roles, ", ")

	return c
}

// YearsOfExperience returns the candidate's total experience in whole years.
func YearsOfExperience(c *models.Candidate) int {
	return c.TotalMonthsExperience / 12
}
