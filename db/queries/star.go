// Package queries contains SQL helpers that don't belong to a single model.
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nicoalimin/talentscan/db/types"
)

// RebuildStarSchema wipes and repopulates the dimensional tables from the raw
// candidate and work experience rows. This keeps the analytical model in sync
// with the raw extraction.
func RebuildStarSchema(ctx context.Context, d types.Querier) error {
	// Clear in reverse-dependency order.
	tables := []string{
		"bridge_experience_skill", "fact_candidate_experience",
		"dim_company", "dim_role", "dim_skill", "dim_candidate",
	}
	for _, table := range tables {
		if _, err := d.ExecContext(ctx, fmt.Sprintf(`DELETE FROM "%s"`, table)); err != nil {
			return fmt.Errorf("failed clearing %s: %w", table, err)
		}
	}

	candidateKeys, err := populateCandidateDim(ctx, d)
	if err != nil {
		return err
	}

	return populateExperienceFacts(ctx, d, candidateKeys)
}

func populateCandidateDim(ctx context.Context, d types.Querier) (_ map[uint64]int64, rerr error) {
	rows, err := d.QueryContext(ctx, `SELECT id, filename, name, age FROM candidates`)
	if err != nil {
		return nil, fmt.Errorf("failed querying candidates: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("failed closing candidates rows: %w", err)
		}
	}()

	type candRow struct {
		id       uint64
		filename string
		name     string
		age      int
	}
	cands := []candRow{}
	for rows.Next() {
		var c candRow
		if err := rows.Scan(&c.id, &c.filename, &c.name, &c.age); err != nil {
			return nil, fmt.Errorf("failed scanning candidate row: %w", err)
		}
		cands = append(cands, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over candidates rows: %w", err)
	}

	keys := make(map[uint64]int64, len(cands))
	for _, c := range cands {
		res, err := d.ExecContext(ctx,
			`INSERT INTO dim_candidate (original_id, filename, name, age) VALUES (?, ?, ?, ?)`,
			c.id, c.filename, c.name, c.age)
		if err != nil {
			return nil, fmt.Errorf("failed inserting into dim_candidate: %w", err)
		}
		key, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get last insert ID: %w", err)
		}
		keys[c.id] = key
	}

	return keys, nil
}

func populateExperienceFacts(ctx context.Context, d types.Querier, candidateKeys map[uint64]int64) (rerr error) {
	rows, err := d.QueryContext(ctx, `SELECT
			candidate_id, company_name, role, months_of_service,
			is_internship, start_date, end_date, tech_stack, skillset
		FROM work_experience`)
	if err != nil {
		return fmt.Errorf("failed querying work experience: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("failed closing work experience rows: %w", err)
		}
	}()

	type expRow struct {
		candidateID         uint64
		company, role       string
		months              int
		internship          bool
		startDate, endDate  string
		techStack, skillset string
	}
	exps := []expRow{}
	for rows.Next() {
		var e expRow
		err = rows.Scan(&e.candidateID, &e.company, &e.role, &e.months,
			&e.internship, &e.startDate, &e.endDate, &e.techStack, &e.skillset)
		if err != nil {
			return fmt.Errorf("failed scanning work experience row: %w", err)
		}
		exps = append(exps, e)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("failed iterating over work experience rows: %w", err)
	}

	for _, e := range exps {
		candidateKey, ok := candidateKeys[e.candidateID]
		if !ok {
			continue
		}

		companyName := e.company
		if companyName == "" {
			companyName = "Unknown"
		}
		companyKey, err := dimKey(ctx, d, "dim_company", "company_key", "company_name", companyName)
		if err != nil {
			return err
		}

		roleName := e.role
		if roleName == "" {
			roleName = "Unknown"
		}
		roleKey, err := dimKey(ctx, d, "dim_role", "role_key", "role_name", roleName)
		if err != nil {
			return err
		}

		res, err := d.ExecContext(ctx, `INSERT INTO fact_candidate_experience
			(candidate_key, company_key, role_key, months_of_service, is_internship, start_date, end_date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			candidateKey, companyKey, roleKey, e.months, e.internship, e.startDate, e.endDate)
		if err != nil {
			return fmt.Errorf("failed inserting into fact_candidate_experience: %w", err)
		}
		factID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %w", err)
		}

		for _, skill := range splitSkills(e.techStack, e.skillset) {
			skillKey, err := dimKey(ctx, d, "dim_skill", "skill_key", "skill_name", skill)
			if err != nil {
				return err
			}
			// Skills mentioned in a work experience entry are considered
			// demonstrated.
			_, err = d.ExecContext(ctx, `INSERT INTO bridge_experience_skill
				(fact_id, skill_key, confidence_level) VALUES (?, ?, 'HIGH')`,
				factID, skillKey)
			if err != nil {
				return fmt.Errorf("failed inserting into bridge_experience_skill: %w", err)
			}
		}
	}

	return nil
}

// dimKey returns the surrogate key of the named dimension member, inserting
// it first if it doesn't exist yet.
func dimKey(ctx context.Context, d types.Querier, table, keyCol, nameCol, name string) (int64, error) {
	var key int64
	err := d.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`, keyCol, table, nameCol), name,
	).Scan(&key)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed querying %s: %w", table, err)
	}

	res, err := d.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?)`, table, nameCol), name)
	if err != nil {
		return 0, fmt.Errorf("failed inserting into %s: %w", table, err)
	}

	key, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return key, nil
}

// splitSkills merges comma-separated skill lists into a deduplicated slice,
// preserving first-seen order.
func splitSkills(lists ...string) []string {
	seen := map[string]struct{}{}
	skills := []string{}
	for _, list := range lists {
		for _, s := range strings.Split(list, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			skills = append(skills, s)
		}
	}

	return skills
}
