package cli

import (
	"fmt"

	actx "github.com/nicoalimin/talentscan/app/context"
	aerrors "github.com/nicoalimin/talentscan/app/errors"
	"github.com/nicoalimin/talentscan/db/queries"
	"github.com/nicoalimin/talentscan/extract"
	"github.com/nicoalimin/talentscan/extract/gemini"
)

// Process scans a directory for resume documents, extracts structured
// candidate data from them, and stores it in the database.
type Process struct {
	Dir string `kong:"arg,optional,help='Directory containing resume documents. Defaults to the configured resume directory.'"`
}

// Run the process command.
func (c *Process) Run(appCtx *actx.Context) error {
	if err := ensureMigrated(appCtx); err != nil {
		return err
	}

	dir := c.Dir
	if dir == "" {
		dir = appCtx.Config.Resumes.Dir.V
	}

	apiKey := appCtx.Env.Get("GEMINI_API_KEY")
	if apiKey == "" {
		return aerrors.NewWith("the GEMINI_API_KEY environment variable must be set")
	}

	extractor, err := gemini.NewExtractor(appCtx.Ctx, apiKey, appCtx.Config.Gemini.Model.V)
	if err != nil {
		return aerrors.NewWithCause("failed creating Gemini extractor", err)
	}

	processor := extract.NewProcessor(appCtx.FS, appCtx.DB, extractor, appCtx.Logger)
	res, err := processor.ProcessDir(appCtx.DB.NewContext(), dir)
	if err != nil {
		return aerrors.NewWithCause("failed processing resumes", err, "dir", dir)
	}

	// Keep the analytical model in sync with the raw data.
	if len(res.Processed) > 0 {
		if err := queries.RebuildStarSchema(appCtx.DB.NewContext(), appCtx.DB); err != nil {
			return aerrors.NewWithCause("failed rebuilding the star schema", err)
		}
	}

	fmt.Fprintf(appCtx.Stdout, "Processed %d resume(s), skipped %d\n",
		len(res.Processed), len(res.Skipped))

	return nil
}
