package models_test

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicoalimin/talentscan/db"
	"github.com/nicoalimin/talentscan/db/migrator"
	"github.com/nicoalimin/talentscan/db/models"
	"github.com/nicoalimin/talentscan/db/types"
)

var fixedTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	rndName := make([]byte, 12)
	_, err := rand.Read(rndName)
	require.NoError(t, err)

	d, err := db.Open(context.Background(),
		fmt.Sprintf("file:models-%x?mode=memory&cache=shared", rndName),
		func() time.Time { return fixedTime })
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	_, err = migrator.Up(d, d.Migrations(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	return d
}

func sampleCandidate() *models.Candidate {
	return &models.Candidate{
		Filename:              "jane_doe.pdf",
		Name:                  "Jane Doe",
		Age:                   31,
		TotalMonthsExperience: 48,
		TotalCompanies:        2,
		RolesServed:           "Software Engineer, Senior Software Engineer",
		Skillset:              "Go, SQL, Kubernetes",
		HighConfidenceSkills:  "Go, SQL",
		LowConfidenceSkills:   "Kubernetes",
		TechStack:             "Go, PostgreSQL",
		GeneralProficiency:    "senior",
		AISummary:             "Backend engineer with platform experience.",
		WorkExperience: []*models.WorkExperience{
			{
				CompanyName:     "Acme",
				Role:            "Software Engineer",
				MonthsOfService: 24,
				Projects:        []string{"billing", "payments"},
				StartDate:       "2019-01",
				EndDate:         "2021-01",
			},
			{
				CompanyName:     "Initech",
				Role:            "Senior Software Engineer",
				MonthsOfService: 24,
				IsInternship:    false,
				HasOverlap:      true,
				StartDate:       "2021-01",
			},
		},
	}
}

func TestCandidateSaveLoad(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	ctx := context.Background()

	c := sampleCandidate()
	require.NoError(t, c.Save(ctx, d))
	assert.NotZero(t, c.ID)
	assert.Equal(t, fixedTime, c.CreateAt)

	loaded := &models.Candidate{ID: c.ID}
	require.NoError(t, loaded.Load(ctx, d))
	assert.Equal(t, "Jane Doe", loaded.Name)
	assert.Equal(t, "jane_doe.pdf", loaded.Filename)
	assert.Equal(t, 48, loaded.TotalMonthsExperience)

	require.Len(t, loaded.WorkExperience, 2)
	// Entries come back ordered by start date, most recent first.
	assert.Equal(t, "Initech", loaded.WorkExperience[0].CompanyName)
	assert.True(t, loaded.WorkExperience[0].HasOverlap)
	assert.Equal(t, []string{"billing", "payments"}, loaded.WorkExperience[1].Projects)
}

func TestCandidateLoadByFilename(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	ctx := context.Background()

	c := sampleCandidate()
	require.NoError(t, c.Save(ctx, d))

	loaded := &models.Candidate{Filename: "jane_doe.pdf"}
	require.NoError(t, loaded.Load(ctx, d))
	assert.Equal(t, c.ID, loaded.ID)
}

func TestCandidateLoadInvalidInput(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	err := (&models.Candidate{}).Load(context.Background(), d)
	assert.ErrorAs(t, err, &types.InvalidInputError{})
}

func TestCandidateLoadNoResult(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	err := (&models.Candidate{Filename: "missing.pdf"}).Load(context.Background(), d)
	var noResErr types.NoResultError
	require.ErrorAs(t, err, &noResErr)
	assert.Equal(t, "candidate", noResErr.ModelName)
}

func TestCandidateSaveDuplicateFilename(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, sampleCandidate().Save(ctx, d))

	err := sampleCandidate().Save(ctx, d)
	var dupErr *types.DuplicateError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "candidate", dupErr.ModelName)
}

// failingQuerier fails every statement containing the match string, and
// delegates the rest.
type failingQuerier struct {
	types.Querier
	match string
}

func (f *failingQuerier) ExecContext(ctx context.Context, stmt string, args ...any) (sql.Result, error) {
	if strings.Contains(stmt, f.match) {
		return nil, fmt.Errorf("disk I/O error")
	}
	return f.Querier.ExecContext(ctx, stmt, args...)
}

// failingTxDB injects failingQuerier into the transaction started by InTx.
type failingTxDB struct {
	*db.DB
	match string
}

func (f *failingTxDB) InTx(ctx context.Context, fn func(q types.Querier) error) error {
	return f.DB.InTx(ctx, func(q types.Querier) error {
		return fn(&failingQuerier{Querier: q, match: f.match})
	})
}

func TestCandidateSaveRollsBackOnFailure(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	ctx := context.Background()

	c := sampleCandidate()
	err := c.Save(ctx, &failingTxDB{DB: d, match: "work_experience"})
	require.ErrorContains(t, err, "disk I/O error")

	// The candidate row was rolled back along with its entries, so the file
	// doesn't register as ingested.
	var noResErr types.NoResultError
	loadErr := (&models.Candidate{Filename: c.Filename}).Load(ctx, d)
	require.ErrorAs(t, loadErr, &noResErr)

	// A later attempt ingests the resume in full.
	c = sampleCandidate()
	require.NoError(t, c.Save(ctx, d))
	loaded := &models.Candidate{Filename: c.Filename}
	require.NoError(t, loaded.Load(ctx, d))
	assert.Len(t, loaded.WorkExperience, 2)
}

func TestCandidatesFilter(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	ctx := context.Background()

	c1 := sampleCandidate()
	require.NoError(t, c1.Save(ctx, d))

	c2 := sampleCandidate()
	c2.Filename = "john_smith.pdf"
	c2.Name = "John Smith"
	require.NoError(t, c2.Save(ctx, d))

	all, err := models.Candidates(ctx, d, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := models.Candidates(ctx, d,
		&types.Filter{Where: "c.name = ?", Args: []any{"John Smith"}})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, c2.ID, filtered[0].ID)
}
