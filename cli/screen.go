package cli

import (
	"fmt"
	"strconv"

	actx "github.com/nicoalimin/talentscan/app/context"
	aerrors "github.com/nicoalimin/talentscan/app/errors"
	"github.com/nicoalimin/talentscan/screen"
)

// Screen ranks all stored candidates against a role query and prints a
// shortlist and a longlist.
type Screen struct {
	Role      string `kong:"required,help='Role to screen for (e.g. Backend Engineer).'"`
	Seniority string `kong:"required,help='Seniority level (e.g. Senior).'"`
	TechStack string `kong:"required,help='Preferred tech stack (comma-separated).'"`
}

// Run the screen command.
func (c *Screen) Run(appCtx *actx.Context) error {
	if err := ensureMigrated(appCtx); err != nil {
		return err
	}

	screener := screen.NewScreener(appCtx.DB, appCtx.Logger)
	res, err := screener.Screen(appCtx.DB.NewContext(), screen.Query{
		Role:      c.Role,
		Seniority: c.Seniority,
		TechStack: c.TechStack,
	})
	if err != nil {
		return aerrors.NewWithCause("failed screening candidates", err)
	}

	fmt.Fprintf(appCtx.Stdout, "Shortlist (top %d):\n", screen.ShortlistSize)
	data := make([][]string, 0, len(res.Shortlist))
	for _, sc := range res.Shortlist {
		data = append(data, []string{
			sc.Name,
			strconv.FormatFloat(sc.Score, 'f', 2, 64),
			sc.GeneralProficiency,
			sc.TechStack,
			sc.AISummary,
		})
	}
	err = renderTable([]string{"Name", "Score", "Proficiency", "Tech Stack", "Summary"}, data, appCtx.Stdout)
	if err != nil {
		return aerrors.NewWithCause("failed rendering shortlist table", err)
	}

	fmt.Fprintf(appCtx.Stdout, "\nLonglist (top %d):\n", screen.LonglistSize)
	data = make([][]string, 0, len(res.Longlist))
	for _, sc := range res.Longlist {
		data = append(data, []string{
			sc.Name,
			strconv.FormatFloat(sc.Score, 'f', 2, 64),
			sc.GeneralProficiency,
		})
	}
	err = renderTable([]string{"Name", "Score", "Proficiency"}, data, appCtx.Stdout)
	if err != nil {
		return aerrors.NewWithCause("failed rendering longlist table", err)
	}

	return nil
}
