package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rksledger/internal/ledger"
	"github.com/roach88/rksledger/internal/model"
)

// NewMembershipTypeCommand creates the membership-type command group.
func NewMembershipTypeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "membership-type",
		Short: "Manage membership types",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a membership type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				id, err := s.ledger.CreateMembershipType(cmd.Context(), args[0])
				if err != nil {
					return s.fail("membership-type add", err)
				}
				mt := model.MembershipType{ID: id, Name: model.NormalizeText(args[0])}
				return s.out.Report(fmt.Sprintf("membership type %d: %s", id, mt.Name), mt)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List membership types with today's active membership counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				types, err := s.ledger.ListMembershipTypes(cmd.Context())
				if err != nil {
					return s.fail("membership-type list", err)
				}
				lines := make([]string, 0, len(types))
				for _, mt := range types {
					lines = append(lines, fmt.Sprintf("%d\t%s\t%d active", mt.ID, mt.Name, mt.ActiveCount))
				}
				if len(lines) == 0 {
					lines = append(lines, "No membership types found.")
				}
				return s.out.Report(strings.Join(lines, "\n"), types)
			})
		},
	})

	return cmd
}

// PricingOptions holds flags for pricing add.
type PricingOptions struct {
	*RootOptions
	MembershipType int64
	Months         int
	Price          string
}

// NewPricingCommand creates the pricing command group.
func NewPricingCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PricingOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pricing",
		Short: "Manage membership pricing options",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Offer a membership type for a length and price",
		Long: `Offer a membership type for a number of months at a price.

Example:
  rksledger pricing add --membership-type 1 --months 3 --price 60.00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := parseMoney("price", opts.Price)
			if err != nil {
				return err
			}
			return withSession(opts.RootOptions, cmd, func(s *session) error {
				o := model.PricingOption{
					MembershipTypeID: opts.MembershipType,
					LengthMonths:     opts.Months,
					Price:            price,
				}
				o.ID, err = s.ledger.CreatePricingOption(cmd.Context(), o)
				if err != nil {
					return s.fail("pricing add", err)
				}
				return s.out.Report(
					fmt.Sprintf("pricing option %d: %d months for %s", o.ID, o.LengthMonths, o.Price), o)
			})
		},
	}
	add.Flags().Int64Var(&opts.MembershipType, "membership-type", 0, "membership type id (required)")
	add.Flags().IntVar(&opts.Months, "months", 0, "length in months (required)")
	add.Flags().StringVar(&opts.Price, "price", "", "price, e.g. 60.00 (required)")
	_ = add.MarkFlagRequired("membership-type")
	_ = add.MarkFlagRequired("months")
	_ = add.MarkFlagRequired("price")
	cmd.AddCommand(add)

	return cmd
}

// MembershipOptions holds flags for the membership commands.
type MembershipOptions struct {
	*RootOptions
	Person         int64
	MembershipType int64
	Begin          string
	End            string
	Notes          string
	Date           string
	Membership     int64
	PricingOption  int64
	Item           int64
}

// NewMembershipCommand creates the membership command group.
func NewMembershipCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "membership",
		Short: "Approve, start and renew memberships",
	}
	cmd.AddCommand(newMembershipAddCommand(rootOpts))
	cmd.AddCommand(newMembershipApproveCommand(rootOpts))
	cmd.AddCommand(newMembershipRenewCommand(rootOpts))
	return cmd
}

func newMembershipAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MembershipOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Start a membership",
		Long: `Start a membership. --begin defaults to today; omit --end for a membership
that does not expire until it is renewed.

Example:
  rksledger membership add --person 1 --membership-type 1 --begin 2024-01-01`,
		Args: cobra.NoArgs,
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
				m, err := s.ledger.CreateMembership(cmd.Context(), model.Membership{
					PersonID:         opts.Person,
					MembershipTypeID: opts.MembershipType,
					BeginDate:        begin,
					EndDate:          end,
					Notes:            opts.Notes,
				})
				if err != nil {
					return s.fail("membership add", err)
				}
				return s.out.Report(fmt.Sprintf("membership %d: %s to %s", m.ID, m.BeginDate, endText(m.EndDate)), m)
			})
		},
	}
	cmd.Flags().Int64Var(&opts.Person, "person", 0, "person id (required)")
	cmd.Flags().Int64Var(&opts.MembershipType, "membership-type", 0, "membership type id (required)")
	cmd.Flags().StringVar(&opts.Begin, "begin", "", "begin date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&opts.End, "end", "", "end date YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "notes")
	_ = cmd.MarkFlagRequired("person")
	_ = cmd.MarkFlagRequired("membership-type")
	return cmd
}

func newMembershipApproveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MembershipOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Record a membership approval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseDate("date", opts.Date)
			if err != nil {
				return err
			}
			return withSession(opts.RootOptions, cmd, func(s *session) error {
				a, err := s.ledger.ApproveMembership(cmd.Context(), opts.Person, on)
				if err != nil {
					return s.fail("membership approve", err)
				}
				return s.out.Report(fmt.Sprintf("person %d approved on %s", a.PersonID, a.ApprovalDate), a)
			})
		},
	}
	cmd.Flags().Int64Var(&opts.Person, "person", 0, "person id (required)")
	cmd.Flags().StringVar(&opts.Date, "date", "", "approval date YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("person")
	return cmd
}

func newMembershipRenewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MembershipOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "renew",
		Short: "Renew a membership with a payment item",
		Long: `Apply a payment item to a pricing option of the membership's type and
extend the membership's end date. The renewal base follows the policy's
renewal_base.

Example:
  rksledger membership renew --membership 1 --pricing-option 2 --item 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts.RootOptions, cmd, func(s *session) error {
				d, err := s.ledger.RenewMembership(cmd.Context(), ledger.RenewalRequest{
					MembershipID:    opts.Membership,
					PricingOptionID: opts.PricingOption,
					PaymentItemID:   opts.Item,
				})
				if err != nil {
					return s.fail("membership renew", err)
				}
				return s.out.Report(fmt.Sprintf("membership %d renewed: %s -> %s",
					d.MembershipID, d.OriginalEndDate, d.NewEndDate), d)
			})
		},
	}
	cmd.Flags().Int64Var(&opts.Membership, "membership", 0, "membership id (required)")
	cmd.Flags().Int64Var(&opts.PricingOption, "pricing-option", 0, "pricing option id (required)")
	cmd.Flags().Int64Var(&opts.Item, "item", 0, "payment item id (required)")
	_ = cmd.MarkFlagRequired("membership")
	_ = cmd.MarkFlagRequired("pricing-option")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func endText(d *model.Date) string {
	if d == nil {
		return "open"
	}
	return d.String()
}
