package models

import (
	"context"
	"fmt"
	"time"

	"github.com/nrednav/cuid2"

	"github.com/nicoalimin/talentscan/db/types"
)

// Screening is an audit record of a single screening run.
type Screening struct {
	ID               string
	CreatedAt        time.Time
	Role             string
	Seniority        string
	TechStack        string
	CandidatesScored int
}

// Save stores the screening record in the database, generating its ID if not
// already set.
func (s *Screening) Save(ctx context.Context, d types.Querier) error {
	if s.ID == "" {
		s.ID = cuid2.Generate()
	}

	timeNow := d.TimeNow().UTC()
	insertStmt := `INSERT INTO screenings
		(id, role, seniority, tech_stack, candidates_scored, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := d.ExecContext(ctx, insertStmt,
		s.ID, s.Role, s.Seniority, s.TechStack, s.CandidatesScored, timeNow)
	if err != nil {
		return types.Err("screening", fmt.Sprintf("ID '%s'", s.ID), err)
	}
	s.CreatedAt = timeNow

	return nil
}

// Screenings returns one or more screening records from the database, most
// recent first. An optional filter can be passed to limit the results.
func Screenings(ctx context.Context, d types.Querier, filter *types.Filter) (screenings []*Screening, rerr error) {
	query := `SELECT id, created_at, role, seniority, tech_stack, candidates_scored
		FROM screenings
		WHERE %s
		ORDER BY created_at DESC`

	where := "1=1"
	args := []any{}
	if filter != nil {
		where = filter.Where
		args = filter.Args
	}

	query = fmt.Sprintf(query, where)

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.LoadError{ModelName: "screenings", Err: err}
	}
	defer func() {
		if err = rows.Close(); err != nil {
			rerr = fmt.Errorf("failed closing screenings rows: %w", err)
		}
	}()

	screenings = make([]*Screening, 0)
	for rows.Next() {
		var s Screening
		err = rows.Scan(&s.ID, &s.CreatedAt, &s.Role, &s.Seniority, &s.TechStack, &s.CandidatesScored)
		if err != nil {
			return nil, types.ScanError{ModelName: "screening", Err: err}
		}
		screenings = append(screenings, &s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over screenings rows: %w", err)
	}

	return screenings, nil
}
