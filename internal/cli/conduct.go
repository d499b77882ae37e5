package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rksledger/internal/model"
)

// ConductOptions holds flags shared by the conduct commands.
type ConductOptions struct {
	*RootOptions
	Person   int64
	Date     string
	Begin    string
	End      string
	Reason   string
	Involved []int64
}

// NewConductCommand creates the conduct command group.
func NewConductCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conduct",
		Short: "Warnings, sanctions, bans and incident reports",
	}
	cmd.AddCommand(newWarnCommand(rootOpts))
	cmd.AddCommand(newSanctionCommand(rootOpts))
	cmd.AddCommand(newBanCommand(rootOpts))
	cmd.AddCommand(newIncidentCommand(rootOpts))
	cmd.AddCommand(newConductHistoryCommand(rootOpts))
	return cmd
}

func newWarnCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConductOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "warn",
		Short: "Record a warning",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			issued, err := parseDate("date", opts.Date)
			if err != nil {
				return err
			}
			return withSession(opts.RootOptions, cmd, func(s *session) error {
				w, err := s.ledger.IssueWarning(cmd.Context(), model.Warning{
					PersonID:   opts.Person,
					IssuedDate: issued,
					Reason:     opts.Reason,
				})
				if err != nil {
					return s.fail("conduct warn", err)
				}
				return s.out.Report(fmt.Sprintf("warning %d: person %d on %s", w.ID, w.PersonID, w.IssuedDate), w)
			})
		},
	}
	cmd.Flags().Int64Var(&opts.Person, "person", 0, "person id (required)")
	cmd.Flags().StringVar(&opts.Date, "date", "", "date issued YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&opts.Reason, "reason", "", "reason (required)")
	_ = cmd.MarkFlagRequired("person")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func newSanctionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConductOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sanction",
		Short: "Restrict a person between two dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			begin, err := parseDate("begin", opts.Begin)
			if err != nil {
				return err
			}
			end, err := parseDate("end", opts.End)
			if err != nil {
				return err
			}
			return withSession(opts.RootOptions, cmd, func(s *session) error {
				sn, err := s.ledger.IssueSanction(cmd.Context(), model.Sanction{
					PersonID:  opts.Person,
					BeginDate: begin,
					EndDate:   end,
					Reason:    opts.Reason,
				})
				if err != nil {
					return s.fail("conduct sanction", err)
				}
				return s.out.Report(fmt.Sprintf("sanction %d: person %d from %s to %s",
					sn.ID, sn.PersonID, sn.BeginDate, sn.EndDate), sn)
			})
		},
	}
	cmd.Flags().Int64Var(&opts.Person, "person", 0, "person id (required)")
	cmd.Flags().StringVar(&opts.Begin, "begin", "", "begin date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&opts.End, "end", "", "end date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&opts.Reason, "reason", "", "reason (required)")
	_ = cmd.MarkFlagRequired("person")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func newBanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConductOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ban",
		Short: "Ban a person, permanently unless --end is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			begin, err := parseDate("begin", opts.Begin)
			if err != nil {
				return err
			}
			end, err := parseOptionalDate("end", opts.End)
			if err != nil {
				return err
			}
			return withSession(opts.RootOptions, cmd, func(s *session) error {
				b, err := s.ledger.IssueBan(cmd.Context(), model.Ban{
					PersonID:  opts.Person,
					BeginDate: begin,
					EndDate:   end,
					Reason:    opts.Reason,
				})
				if err != nil {
					return s.fail("conduct ban", err)
				}
				until := "permanent"
				if b.EndDate != nil {
					until = "until " + b.EndDate.String()
				}
				return s.out.Report(fmt.Sprintf("ban %d: person %d from %s, %s", b.ID, b.PersonID, b.BeginDate, until), b)
			})
		},
	}
	cmd.Flags().Int64Var(&opts.Person, "person", 0, "person id (required)")
	cmd.Flags().StringVar(&opts.Begin, "begin", "", "begin date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&opts.End, "end", "", "end date YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.Reason, "reason", "", "reason (required)")
	_ = cmd.MarkFlagRequired("person")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func newIncidentCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConductOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "incident <description>",
		Short: "File an incident report",
		Long: `File an incident report. The reporter may not be listed as involved.

Example:
  rksledger conduct incident --reporter 2 --involved 5 --involved 6 "Argument at the door"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reported, err := parseDate("date", opts.Date)
			if err != nil {
				return err
			}
			return withSession(opts.RootOptions, cmd, func(s *session) error {
				r, err := s.ledger.FileIncidentReport(cmd.Context(), model.IncidentReport{
					ReporterID:  opts.Person,
					ReportDate:  reported,
					Description: args[0],
					Involved:    opts.Involved,
				})
				if err != nil {
					return s.fail("conduct incident", err)
				}
				return s.out.Report(fmt.Sprintf("incident report %d: %d involved", r.ID, len(r.Involved)), r)
			})
		},
	}
	cmd.Flags().Int64Var(&opts.Person, "reporter", 0, "reporting person id (required)")
	cmd.Flags().Int64SliceVar(&opts.Involved, "involved", nil, "involved person id (repeatable)")
	cmd.Flags().StringVar(&opts.Date, "date", "", "report date YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("reporter")
	return cmd
}

func newConductHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <person-id>",
		Short: "Show a person's warnings, sanctions and bans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				rec, err := s.ledger.ConductHistory(cmd.Context(), id)
				if err != nil {
					return s.fail("conduct history", err)
				}
				var lines []string
				for _, w := range rec.Warnings {
					lines = append(lines, fmt.Sprintf("%s\twarning\t%s", w.IssuedDate, w.Reason))
				}
				for _, sn := range rec.Sanctions {
					lines = append(lines, fmt.Sprintf("%s\tsanction until %s\t%s", sn.BeginDate, sn.EndDate, sn.Reason))
				}
				for _, b := range rec.Bans {
					lines = append(lines, fmt.Sprintf("%s\tban until %s\t%s", b.BeginDate, endText(b.EndDate), b.Reason))
				}
				if len(lines) == 0 {
					lines = append(lines, "No conduct records.")
				}
				return s.out.Report(strings.Join(lines, "\n"), rec)
			})
		},
	}
}

// NewDocumentCommand creates the document command group.
func NewDocumentCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "document",
		Short: "Legal document types and signatures",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "type <name>",
		Short: "Add a legal document type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				id, err := s.ledger.CreateLegalDocumentType(cmd.Context(), args[0])
				if err != nil {
					return s.fail("document type", err)
				}
				t := model.LegalDocumentType{ID: id, Name: model.NormalizeText(args[0])}
				return s.out.Report(fmt.Sprintf("legal document type %d: %s", t.ID, t.Name), t)
			})
		},
	})

	var (
		person, docType int64
		date, notes     string
	)
	sign := &cobra.Command{
		Use:   "sign",
		Short: "Record a signed legal document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signed, err := parseDate("date", date)
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				d, err := s.ledger.RecordLegalDocument(cmd.Context(), model.LegalDocument{
					PersonID:   person,
					TypeID:     docType,
					SignedDate: signed,
					Notes:      notes,
				})
				if err != nil {
					return s.fail("document sign", err)
				}
				return s.out.Report(fmt.Sprintf("legal document %d: person %d signed on %s", d.ID, d.PersonID, d.SignedDate), d)
			})
		},
	}
	sign.Flags().Int64Var(&person, "person", 0, "signing person id (required)")
	sign.Flags().Int64Var(&docType, "type", 0, "legal document type id (required)")
	sign.Flags().StringVar(&date, "date", "", "date signed YYYY-MM-DD (default today)")
	sign.Flags().StringVar(&notes, "notes", "", "notes")
	_ = sign.MarkFlagRequired("person")
	_ = sign.MarkFlagRequired("type")
	cmd.AddCommand(sign)

	return cmd
}
