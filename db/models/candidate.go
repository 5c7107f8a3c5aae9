package models

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nicoalimin/talentscan/db/types"
)

// Candidate is a single screened person, extracted from one resume document.
// The rollup fields (TotalMonthsExperience, TotalCompanies, RolesServed) are
// aggregated from the work experience entries at ingestion time.
type Candidate struct {
	ID                    uint64
	CreateAt              time.Time
	Filename              string
	Name                  string
	Age                   int
	TotalMonthsExperience int
	TotalCompanies        int
	RolesServed           string
	Skillset              string
	HighConfidenceSkills  string
	LowConfidenceSkills   string
	TechStack             string
	GeneralProficiency    string
	AISummary             string

	WorkExperience []*WorkExperience
}

// Save stores the candidate data in the database. The resume filename is
// unique, so saving a candidate for an already ingested file returns a
// DuplicateError. The candidate row and its work experience entries are
// written in a single transaction, so a failed save leaves no partial record
// behind.
func (c *Candidate) Save(ctx context.Context, d types.Querier) error {
	if txd, ok := d.(types.TxQuerier); ok {
		return txd.InTx(ctx, func(q types.Querier) error {
			return c.save(ctx, q)
		})
	}

	// Already transaction-backed, or a test double.
	return c.save(ctx, d)
}

func (c *Candidate) save(ctx context.Context, d types.Querier) error {
	timeNow := d.TimeNow().UTC()
	insertStmt := `INSERT INTO candidates
		(id, create_at, filename, name, age,
		 total_months_experience, total_companies, roles_served,
		 skillset, high_confidence_skills, low_confidence_skills,
		 tech_stack, general_proficiency, ai_summary)
		VALUES (NULL, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := d.ExecContext(ctx, insertStmt,
		timeNow, c.Filename, c.Name, c.Age,
		c.TotalMonthsExperience, c.TotalCompanies, c.RolesServed,
		c.Skillset, c.HighConfidenceSkills, c.LowConfidenceSkills,
		c.TechStack, c.GeneralProficiency, c.AISummary)
	if err != nil {
		return types.Err("candidate", fmt.Sprintf("filename '%s'", c.Filename), err)
	}

	c.ID, err = lastInsertID(res)
	if err != nil {
		return err
	}
	c.CreateAt = timeNow

	for _, we := range c.WorkExperience {
		we.CandidateID = c.ID
		if err := we.Save(ctx, d); err != nil {
			return err
		}
	}

	return nil
}

// Load the candidate data from the database, including its work experience
// entries. Either the candidate ID or Filename must be set for the lookup.
func (c *Candidate) Load(ctx context.Context, d types.Querier) error {
	if c.ID == 0 && c.Filename == "" {
		return types.InvalidInputError{Msg: "either candidate ID or Filename must be set"}
	}

	var filter *types.Filter
	var filterStr string
	if c.ID != 0 {
		filter = &types.Filter{Where: "c.id = ?", Args: []any{c.ID}}
		filterStr = fmt.Sprintf("ID %d", c.ID)
	} else {
		filter = &types.Filter{Where: "c.filename = ?", Args: []any{c.Filename}}
		filterStr = fmt.Sprintf("filename '%s'", c.Filename)
	}

	candidates, err := Candidates(ctx, d, filter)
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		return types.NoResultError{ModelName: "candidate", ID: filterStr}
	}

	// The unique constraints on candidates.id and candidates.filename should
	// return only a single result.
	if len(candidates) > 1 {
		panic(fmt.Sprintf("candidates query returned more than 1 candidate: %d", len(candidates)))
	}
	*c = *candidates[0]

	return nil
}

// Candidates returns one or more candidates from the database, each with its
// work experience entries. An optional filter can be passed to limit the
// results.
func Candidates(ctx context.Context, d types.Querier, filter *types.Filter) (candidates []*Candidate, rerr error) {
	query := `SELECT
			c.id, c.create_at, c.filename, c.name, c.age,
			c.total_months_experience, c.total_companies, c.roles_served,
			c.skillset, c.high_confidence_skills, c.low_confidence_skills,
			c.tech_stack, c.general_proficiency, c.ai_summary
		FROM candidates c
		WHERE %s
		ORDER BY c.id ASC`

	where := "1=1"
	args := []any{}
	if filter != nil {
		where = filter.Where
		args = filter.Args
	}

	query = fmt.Sprintf(query, where)

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.LoadError{ModelName: "candidates", Err: err}
	}
	defer func() {
		if err = rows.Close(); err != nil {
			rerr = fmt.Errorf("failed closing candidates rows: %w", err)
		}
	}()

	candidates = make([]*Candidate, 0)
	for rows.Next() {
		var (
			c        Candidate
			createAt sql.Null[time.Time]
		)
		err = rows.Scan(&c.ID, &createAt, &c.Filename, &c.Name, &c.Age,
			&c.TotalMonthsExperience, &c.TotalCompanies, &c.RolesServed,
			&c.Skillset, &c.HighConfidenceSkills, &c.LowConfidenceSkills,
			&c.TechStack, &c.GeneralProficiency, &c.AISummary)
		if err != nil {
			return nil, types.ScanError{ModelName: "candidate", Err: err}
		}
		if createAt.Valid {
			c.CreateAt = createAt.V
		}
		candidates = append(candidates, &c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over candidates rows: %w", err)
	}

	for _, c := range candidates {
		weFilter := &types.Filter{Where: "candidate_id = ?", Args: []any{c.ID}}
		c.WorkExperience, err = WorkExperiences(ctx, d, weFilter)
		if err != nil {
			return nil, err
		}
	}

	return candidates, nil
}
