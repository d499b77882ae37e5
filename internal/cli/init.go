package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitResult is the output of the init command.
type InitResult struct {
	Path          string `json:"path"`
	SchemaVersion int    `json:"schema_version"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or migrate the ledger database",
		Long: `Create the ledger database named by --db, or bring an existing one up to
the current schema version. Safe to run repeatedly.

Example:
  rksledger init --db ./ledger.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				version, err := s.store.SchemaVersion()
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read schema version", err)
				}
				return s.out.Report(
					fmt.Sprintf("%s ready (schema version %d)", rootOpts.DBPath, version),
					InitResult{Path: rootOpts.DBPath, SchemaVersion: version},
				)
			})
		},
	}
}
