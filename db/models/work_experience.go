package models

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nicoalimin/talentscan/db/types"
)

// WorkExperience is a single employment entry on a candidate's resume.
type WorkExperience struct {
	ID              uint64
	CandidateID     uint64
	CompanyName     string
	Role            string
	MonthsOfService int
	Skillset        string
	TechStack       string
	Projects        []string
	IsInternship    bool
	HasOverlap      bool
	StartDate       string
	EndDate         string
	Description     string
}

// Save stores the work experience data in the database. CandidateID must
// reference an existing candidate.
func (w *WorkExperience) Save(ctx context.Context, d types.Querier) error {
	projects, err := json.Marshal(w.Projects)
	if err != nil {
		return fmt.Errorf("failed serializing projects: %w", err)
	}

	insertStmt := `INSERT INTO work_experience
		(id, candidate_id, company_name, role, months_of_service,
		 skillset, tech_stack, projects, is_internship, has_overlap,
		 start_date, end_date, description)
		VALUES (NULL, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := d.ExecContext(ctx, insertStmt,
		w.CandidateID, w.CompanyName, w.Role, w.MonthsOfService,
		w.Skillset, w.TechStack, string(projects), w.IsInternship, w.HasOverlap,
		w.StartDate, w.EndDate, w.Description)
	if err != nil {
		return types.Err("work experience", fmt.Sprintf("candidate ID %d", w.CandidateID), err)
	}

	w.ID, err = lastInsertID(res)
	if err != nil {
		return err
	}

	return nil
}

// WorkExperiences returns one or more work experience entries from the
// database, most recent first. An optional filter can be passed to limit the
// results.
func WorkExperiences(ctx context.Context, d types.Querier, filter *types.Filter) (exps []*WorkExperience, rerr error) {
	query := `SELECT
			id, candidate_id, company_name, role, months_of_service,
			skillset, tech_stack, projects, is_internship, has_overlap,
			start_date, end_date, description
		FROM work_experience
		WHERE %s
		ORDER BY start_date DESC`

	where := "1=1"
	args := []any{}
	if filter != nil {
		where = filter.Where
		args = filter.Args
	}

	query = fmt.Sprintf(query, where)

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.LoadError{ModelName: "work experiences", Err: err}
	}
	defer func() {
		if err = rows.Close(); err != nil {
			rerr = fmt.Errorf("failed closing work experience rows: %w", err)
		}
	}()

	exps = make([]*WorkExperience, 0)
	for rows.Next() {
		var (
			w        WorkExperience
			projects string
		)
		err = rows.Scan(&w.ID, &w.CandidateID, &w.CompanyName, &w.Role, &w.MonthsOfService,
			&w.Skillset, &w.TechStack, &projects, &w.IsInternship, &w.HasOverlap,
			&w.StartDate, &w.EndDate, &w.Description)
		if err != nil {
			return nil, types.ScanError{ModelName: "work experience", Err: err}
		}
		if projects != "" {
			// Tolerate malformed project data written by older versions.
			_ = json.Unmarshal([]byte(projects), &w.Projects)
		}
		exps = append(exps, &w)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over work experience rows: %w", err)
	}

	return exps, nil
}
