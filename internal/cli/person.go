package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rksledger/internal/model"
)

// PersonOptions holds flags for person add.
type PersonOptions struct {
	*RootOptions
	Name     string
	Pronouns string
	Notes    string
	Aliases  []string
	Emails   []string
}

// NewPersonCommand creates the person command group.
func NewPersonCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Add and look up people",
	}
	cmd.AddCommand(newPersonAddCommand(rootOpts))
	cmd.AddCommand(newPersonShowCommand(rootOpts))
	cmd.AddCommand(newPersonListCommand(rootOpts))
	cmd.AddCommand(newPersonCountsCommand(rootOpts))
	return cmd
}

func newPersonAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PersonOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a person",
		Long: `Add a person. The first --email becomes the primary address.

Example:
  rksledger person add --name Alex --pronouns they/them --email alex@example.org`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts.RootOptions, cmd, func(s *session) error {
				p, err := s.ledger.CreatePerson(cmd.Context(), model.Person{
					FirstNameOrNickname: opts.Name,
					Pronouns:            opts.Pronouns,
					Notes:               opts.Notes,
					Aliases:             opts.Aliases,
					EmailAddresses:      opts.Emails,
				})
				if err != nil {
					return s.fail("person add", err)
				}
				return s.out.Report(fmt.Sprintf("person %d: %s", p.ID, p.FirstNameOrNickname), p)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "first name or nickname (required)")
	cmd.Flags().StringVar(&opts.Pronouns, "pronouns", "", "pronouns")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "notes")
	cmd.Flags().StringSliceVar(&opts.Aliases, "alias", nil, "alias (repeatable)")
	cmd.Flags().StringSliceVar(&opts.Emails, "email", nil, "email address (repeatable, first is primary)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPersonShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <person-id>",
		Short: "Show a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				p, err := s.ledger.GetPerson(cmd.Context(), id)
				if err != nil {
					return s.fail("person show", err)
				}
				return s.out.Report(formatPerson(p), p)
			})
		},
	}
}

func newPersonListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List people",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				people, err := s.ledger.ListPeople(cmd.Context())
				if err != nil {
					return s.fail("person list", err)
				}
				lines := make([]string, 0, len(people))
				for _, p := range people {
					lines = append(lines, fmt.Sprintf("%d\t%s\t%s", p.ID, p.FirstNameOrNickname, p.PrimaryEmail()))
				}
				if len(lines) == 0 {
					lines = append(lines, "No people found.")
				}
				return s.out.Report(strings.Join(lines, "\n"), people)
			})
		},
	}
}

func newPersonCountsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Count email addresses and phone numbers on file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				c, err := s.ledger.ContactCounts(cmd.Context())
				if err != nil {
					return s.fail("person counts", err)
				}
				return s.out.Report(
					fmt.Sprintf("%d email addresses, %d phone numbers", c.EmailAddresses, c.PhoneNumbers), c)
			})
		},
	}
}

func formatPerson(p model.Person) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Person %d\n", p.ID)
	fmt.Fprintf(&b, "  Name: %s\n", p.FirstNameOrNickname)
	fmt.Fprintf(&b, "  Pronouns: %s\n", orNone(p.Pronouns))
	fmt.Fprintf(&b, "  Aliases: %s\n", orNone(strings.Join(p.Aliases, ", ")))
	fmt.Fprintf(&b, "  Email: %s\n", orNone(strings.Join(p.EmailAddresses, ", ")))
	for _, n := range p.PhoneNumbers {
		fmt.Fprintf(&b, "  Phone: %s\n", n)
	}
	fmt.Fprintf(&b, "  Notes: %s", orNone(p.Notes))
	return b.String()
}
