// Package screen ranks stored candidates against a role query.
package screen

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/nicoalimin/talentscan/db/models"
	"github.com/nicoalimin/talentscan/db/types"
)

// Shortlist and longlist sizes.
const (
	ShortlistSize = 5
	LonglistSize  = 20
)

// Query describes the position candidates are screened for.
type Query struct {
	Role      string
	Seniority string
	TechStack string
}

// ScoredCandidate is a candidate annotated with its screening score.
type ScoredCandidate struct {
	*models.Candidate
	Score float64
}

// Result holds the outcome of a single screening run.
type Result struct {
	ScreeningID string
	Longlist    []*ScoredCandidate
	Shortlist   []*ScoredCandidate
}

// Screener scores all stored candidates against a query.
type Screener struct {
	db     types.Querier
	logger *slog.Logger
}

// NewScreener creates a new candidate screener.
func NewScreener(db types.Querier, logger *slog.Logger) *Screener {
	return &Screener{db: db, logger: logger}
}

// Screen scores every stored candidate against the query and returns them
// ordered by descending score, capped to the longlist and shortlist sizes.
// The run is recorded in the screenings audit table.
func (s *Screener) Screen(ctx context.Context, q Query) (*Result, error) {
	candidates, err := models.Candidates(ctx, s.db, nil)
	if err != nil {
		return nil, err
	}

	scored := make([]*ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		sc := &ScoredCandidate{Candidate: c, Score: score(c, q)}
		scored = append(scored, sc)
	}

	// Stable sort so equally scored candidates keep their insertion order.
	slices.SortStableFunc(scored, func(a, b *ScoredCandidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	record := &models.Screening{
		Role:             q.Role,
		Seniority:        q.Seniority,
		TechStack:        q.TechStack,
		CandidatesScored: len(scored),
	}
	if err := record.Save(ctx, s.db); err != nil {
		return nil, err
	}

	s.logger.Info("screened candidates",
		"screening_id", record.ID, "role", q.Role, "candidates", len(scored))

	return &Result{
		ScreeningID: record.ID,
		Longlist:    scored[:min(len(scored), LonglistSize)],
		Shortlist:   scored[:min(len(scored), ShortlistSize)],
	}, nil
}

// score implements a keyword-matching heuristic: up to 50 points for tech
// stack overlap, 30 for a seniority match, 10 for a role mention, and up to
// 10 for years of experience.
func score(c *models.Candidate, q Query) float64 {
	var total float64

	candidateSkills := strings.ToLower(c.Skillset)
	candidateStack := strings.ToLower(c.TechStack)
	candidateRole := strings.ToLower(c.GeneralProficiency)

	targetStack := []string{}
	for _, t := range strings.Split(q.TechStack, ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			targetStack = append(targetStack, t)
		}
	}

	matches := 0
	for _, tech := range targetStack {
		if strings.Contains(candidateSkills, tech) || strings.Contains(candidateStack, tech) {
			matches++
		}
	}
	if len(targetStack) > 0 {
		total += float64(matches) / float64(len(targetStack)) * 50
	}

	seniority := strings.ToLower(q.Seniority)
	switch {
	case seniority != "" && strings.Contains(candidateRole, seniority):
		total += 30
	case seniority == "senior" && strings.Contains(candidateRole, "lead"):
		// Lead covers senior.
		total += 30
	case seniority == "mid" && (strings.Contains(candidateRole, "senior") ||
		strings.Contains(candidateRole, "lead")):
		// Overqualified is fine.
		total += 30
	}

	role := strings.ToLower(q.Role)
	if role != "" && (strings.Contains(candidateSkills, role) || strings.Contains(candidateStack, role)) {
		total += 10
	}

	if yoe := c.TotalMonthsExperience / 12; yoe > 0 {
		total += float64(min(yoe, 10))
	}

	return total
}
