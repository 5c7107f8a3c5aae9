package cli

import (
	"fmt"
	"strconv"

	actx "github.com/nicoalimin/talentscan/app/context"
	aerrors "github.com/nicoalimin/talentscan/app/errors"
	"github.com/nicoalimin/talentscan/db/models"
)

// Candidate manages the stored candidate records.
type Candidate struct {
	List struct{} `kong:"cmd,help='List all stored candidates.',aliases='ls'"`
}

// Run the candidate command.
func (c *Candidate) Run(appCtx *actx.Context) error {
	if err := ensureMigrated(appCtx); err != nil {
		return err
	}

	candidates, err := models.Candidates(appCtx.DB.NewContext(), appCtx.DB, nil)
	if err != nil {
		return aerrors.NewWithCause("failed loading candidates", err)
	}

	if len(candidates) == 0 {
		fmt.Fprintln(appCtx.Stdout, "No candidates found. Run 'talentscan process' first.")
		return nil
	}

	data := make([][]string, 0, len(candidates))
	for _, cand := range candidates {
		data = append(data, []string{
			strconv.FormatUint(cand.ID, 10),
			cand.Name,
			cand.GeneralProficiency,
			formatExperience(cand.TotalMonthsExperience),
			strconv.Itoa(cand.TotalCompanies),
			cand.TechStack,
		})
	}

	err = renderTable([]string{"ID", "Name", "Proficiency", "Experience", "Companies", "Tech Stack"},
		data, appCtx.Stdout)
	if err != nil {
		return aerrors.NewWithCause("failed rendering candidates table", err)
	}

	return nil
}

func formatExperience(totalMonths int) string {
	years, months := totalMonths/12, totalMonths%12
	if months == 0 {
		return fmt.Sprintf("%dy", years)
	}
	return fmt.Sprintf("%dy %dm", years, months)
}
