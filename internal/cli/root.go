package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/rksledger/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	DBPath     string
	PolicyPath string

	// LogLevel comes from RKSLEDGER_LOG_LEVEL; --verbose lowers it to debug.
	LogLevel slog.Level
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the rksledger CLI. Flag
// defaults come from the environment (see config.Env).
func NewRootCommand() *cobra.Command {
	env, envErr := config.LoadEnv()
	if envErr != nil {
		env = config.Env{DBPath: "rksledger.db", LogLevel: slog.LevelInfo}
	}
	opts := &RootOptions{LogLevel: env.LogLevel}

	cmd := &cobra.Command{
		Use:   "rksledger",
		Short: "rksledger - membership organization ledger",
		Long: `A ledger for a membership organization: people, memberships and dues,
events and door fees, payments, attendance, guest intake and conduct records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return WrapExitError(ExitCommandError, "invalid environment", envErr)
			}
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", env.DBPath, "path to SQLite database (env RKSLEDGER_DB)")
	cmd.PersistentFlags().StringVar(&opts.PolicyPath, "policy", env.PolicyPath, "path to CUE policy file (env RKSLEDGER_POLICY)")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewPersonCommand(opts))
	cmd.AddCommand(NewMembershipTypeCommand(opts))
	cmd.AddCommand(NewPricingCommand(opts))
	cmd.AddCommand(NewMembershipCommand(opts))
	cmd.AddCommand(NewEventTypeCommand(opts))
	cmd.AddCommand(NewEventCommand(opts))
	cmd.AddCommand(NewPaymentCommand(opts))
	cmd.AddCommand(NewDoorFeeCommand(opts))
	cmd.AddCommand(NewIntakeCommand(opts))
	cmd.AddCommand(NewAttendCommand(opts))
	cmd.AddCommand(NewRSVPCommand(opts))
	cmd.AddCommand(NewConductCommand(opts))
	cmd.AddCommand(NewDocumentCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
