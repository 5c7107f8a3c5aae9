package queries

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicoalimin/talentscan/db"
	"github.com/nicoalimin/talentscan/db/migrator"
	"github.com/nicoalimin/talentscan/db/models"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	rndName := make([]byte, 12)
	_, err := rand.Read(rndName)
	require.NoError(t, err)

	d, err := db.Open(context.Background(),
		fmt.Sprintf("file:queries-%x?mode=memory&cache=shared", rndName),
		func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	_, err = migrator.Up(d, d.Migrations(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	return d
}

func countRows(t *testing.T, d *db.DB, table string) int {
	t.Helper()
	var count int
	err := d.QueryRowContext(context.Background(),
		fmt.Sprintf(`SELECT COUNT(*) FROM "%s"`, table)).Scan(&count)
	require.NoError(t, err)
	return count
}

func TestRebuildStarSchema(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	ctx := context.Background()

	c := &models.Candidate{
		Filename: "jane.pdf", Name: "Jane Doe", Age: 31,
		WorkExperience: []*models.WorkExperience{
			{
				CompanyName:     "Acme",
				Role:            "Software Engineer",
				MonthsOfService: 24,
				TechStack:       "Go, PostgreSQL",
				Skillset:        "Go, Kafka",
			},
			{
				// Missing company and role map to the Unknown member.
				MonthsOfService: 6,
				TechStack:       "Go",
			},
		},
	}
	require.NoError(t, c.Save(ctx, d))

	require.NoError(t, RebuildStarSchema(ctx, d))

	assert.Equal(t, 1, countRows(t, d, "dim_candidate"))
	assert.Equal(t, 2, countRows(t, d, "fact_candidate_experience"))

	// "Acme" and "Unknown".
	assert.Equal(t, 2, countRows(t, d, "dim_company"))
	var unknown int
	err := d.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM dim_company WHERE company_name = 'Unknown'`).Scan(&unknown)
	require.NoError(t, err)
	assert.Equal(t, 1, unknown)

	// Go, PostgreSQL, Kafka deduplicated across tech stack and skillset.
	assert.Equal(t, 3, countRows(t, d, "dim_skill"))
	// First entry bridges 3 skills, the second bridges Go again.
	assert.Equal(t, 4, countRows(t, d, "bridge_experience_skill"))
}

func TestRebuildStarSchemaIsIdempotent(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)
	ctx := context.Background()

	c := &models.Candidate{
		Filename: "jane.pdf", Name: "Jane Doe",
		WorkExperience: []*models.WorkExperience{
			{CompanyName: "Acme", Role: "Engineer", TechStack: "Go"},
		},
	}
	require.NoError(t, c.Save(ctx, d))

	require.NoError(t, RebuildStarSchema(ctx, d))
	require.NoError(t, RebuildStarSchema(ctx, d))

	assert.Equal(t, 1, countRows(t, d, "dim_candidate"))
	assert.Equal(t, 1, countRows(t, d, "fact_candidate_experience"))
	assert.Equal(t, 1, countRows(t, d, "dim_skill"))
	assert.Equal(t, 1, countRows(t, d, "bridge_experience_skill"))
}

func TestRebuildStarSchemaEmpty(t *testing.T) {
	t.Parallel()
	d := newTestDB(t)

	require.NoError(t, RebuildStarSchema(context.Background(), d))
	assert.Zero(t, countRows(t, d, "dim_candidate"))
	assert.Zero(t, countRows(t, d, "fact_candidate_experience"))
}

func TestSplitSkills(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"Go", "PostgreSQL", "Kafka"},
		splitSkills("Go, PostgreSQL", " Go ,Kafka, "))
	assert.Empty(t, splitSkills("", " , "))
}
