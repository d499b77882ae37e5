package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/rksledger/internal/ledger"
	"github.com/roach88/rksledger/internal/model"
)

// SheetFile is the YAML layout accepted by intake submit:
//
//	event: 3
//	date: 2024-05-03
//	fields:
//	  - name: What should we call you?
//	    behavior: first_name_or_nickname
//	    data: Sam
type SheetFile struct {
	Event  *int64       `yaml:"event"`
	Date   model.Date   `yaml:"date"`
	Fields []SheetField `yaml:"fields"`
}

// SheetField is one answered field of a SheetFile.
type SheetField struct {
	Name     string              `yaml:"name"`
	Behavior model.FieldBehavior `yaml:"behavior"`
	Position int                 `yaml:"position"`
	Data     string              `yaml:"data"`
}

// LoadSheetFile reads and strictly decodes a guest sheet file.
func LoadSheetFile(path string) (ledger.GuestSheetRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ledger.GuestSheetRequest{}, fmt.Errorf("failed to read sheet file: %w", err)
	}

	var sf SheetFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil {
		return ledger.GuestSheetRequest{}, fmt.Errorf("failed to parse sheet file: %w", err)
	}

	req := ledger.GuestSheetRequest{EventID: sf.Event, CompletionDate: sf.Date}
	for _, f := range sf.Fields {
		req.Fields = append(req.Fields, model.GuestInfoSheetField{
			Name:     f.Name,
			Behavior: f.Behavior,
			Position: f.Position,
			Data:     f.Data,
		})
	}
	return req, nil
}

// NewIntakeCommand creates the intake command group.
func NewIntakeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intake",
		Short: "Guest info sheets",
	}
	cmd.AddCommand(newIntakeSubmitCommand(rootOpts))
	cmd.AddCommand(newIntakeProjectCommand(rootOpts))
	cmd.AddCommand(newIntakeTemplateCommand(rootOpts))
	return cmd
}

func newIntakeSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <sheet.yaml>",
		Short: "Store a completed guest info sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := LoadSheetFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "intake submit", err)
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				sheet, err := s.ledger.SubmitGuestSheet(cmd.Context(), req)
				if err != nil {
					return s.fail("intake submit", err)
				}
				return s.out.Report(
					fmt.Sprintf("guest info sheet %d: %d fields", sheet.ID, len(sheet.Fields)), sheet)
			})
		},
	}
}

func newIntakeProjectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "project <sheet-id>",
		Short: "Create a person from a guest info sheet",
		Long: `Create a person from the sheet's tagged fields and link the sheet to them.
A sheet can be projected once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				p, err := s.ledger.ProjectGuestSheet(cmd.Context(), id)
				if err != nil {
					return s.fail("intake project", err)
				}
				return s.out.Report(formatPerson(p), p)
			})
		},
	}
}

func newIntakeTemplateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		behavior string
		position int
	)

	cmd := &cobra.Command{
		Use:   "template [field-name]",
		Short: "Show the default guest sheet fields, or add one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				if len(args) == 1 {
					_, err := s.ledger.SetDefaultGuestSheetField(cmd.Context(), model.DefaultGuestSheetField{
						Name:     args[0],
						Behavior: model.FieldBehavior(behavior),
						Position: position,
					})
					if err != nil {
						return s.fail("intake template", err)
					}
				}
				fields, err := s.ledger.GuestSheetTemplate(cmd.Context())
				if err != nil {
					return s.fail("intake template", err)
				}
				lines := make([]string, 0, len(fields))
				for _, f := range fields {
					lines = append(lines, fmt.Sprintf("%d\t%s\t%s", f.Position, f.Name, orNone(string(f.Behavior))))
				}
				if len(lines) == 0 {
					lines = append(lines, "No default fields.")
				}
				return s.out.Report(strings.Join(lines, "\n"), fields)
			})
		},
	}
	cmd.Flags().StringVar(&behavior, "behavior", "", "projection behavior of the new field")
	cmd.Flags().IntVar(&position, "position", 0, "position of the new field")
	return cmd
}
