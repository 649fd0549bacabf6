package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/ecopickup/ecopickup/internal/seed"
)

// Exit codes returned by SeedCLI.Run.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitMalformed = 10
)

// Seeder is the subset of seed.Seeder the CLI drives.
type Seeder interface {
	Seed(ctx context.Context) (seed.Report, error)
	Reset(ctx context.Context) (seed.Report, error)
}

// SeedCLI runs the demo data seeder from the command line.
type SeedCLI struct {
	seeder Seeder
}

// NewSeedCLI constructs a SeedCLI.
func NewSeedCLI(seeder Seeder) (*SeedCLI, error) {
	if seeder == nil {
		return nil, errors.New("seed cli: seeder not configured")
	}
	return &SeedCLI{seeder: seeder}, nil
}

// SeedOptions defines the flags for the seed and reset commands.
type SeedOptions struct {
	Reset      bool
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

type seedSummary struct {
	OK     bool              `json:"ok"`
	Slots  []seed.SlotResult `json:"slots"`
	Errors []string          `json:"errors,omitempty"`
}

// Run seeds (or resets) the store and prints the report. Slots left untouched
// because their content is malformed yield ExitMalformed.
func (c *SeedCLI) Run(ctx context.Context, opts SeedOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	op := "seed"
	run := c.seeder.Seed
	if opts.Reset {
		op = "reset"
		run = c.seeder.Reset
	}

	report, err := run(ctx)
	malformed := seed.OnlyMalformed(err)
	if err != nil && !malformed {
		_, _ = fmt.Fprintf(opts.Stderr, "%s: %v\n", op, err)
		return ExitFailure
	}

	if opts.JSONOutput {
		summary := seedSummary{OK: err == nil, Slots: report.Slots}
		if err != nil {
			summary.Errors = []string{err.Error()}
		}
		if encErr := json.NewEncoder(opts.Stdout).Encode(summary); encErr != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "%s: encode json: %v\n", op, encErr)
			return ExitFailure
		}
	} else {
		renderReport(opts.Stdout, report)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "%s: %v\n", op, err)
		}
	}
	if malformed {
		return ExitMalformed
	}
	return ExitOK
}

func renderReport(w io.Writer, report seed.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SLOT\tKEY\tOUTCOME\tRECORDS")
	for _, s := range report.Slots {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", s.Slot, s.Key, s.Outcome, s.Records)
	}
	_ = tw.Flush()
}
