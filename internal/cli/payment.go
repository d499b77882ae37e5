package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rksledger/internal/ledger"
	"github.com/roach88/rksledger/internal/model"
)

// PaymentOptions holds flags for payment record.
type PaymentOptions struct {
	*RootOptions
	Person  int64
	Date    string
	Method  string
	Notes   string
	Amounts []string
}

// NewPaymentCommand creates the payment command group.
func NewPaymentCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Record payments",
	}
	cmd.AddCommand(newPaymentRecordCommand(rootOpts))
	return cmd
}

func newPaymentRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PaymentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record money received from a person",
		Long: `Record a payment. Each --amount becomes one payment item that can later
be applied to a renewal or a door fee.

Example:
  rksledger payment record --person 1 --amount 60.00 --amount 10.00 --method cash`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ledger.PaymentRequest{PersonID: opts.Person, Method: opts.Method, Notes: opts.Notes}
			var err error
			if req.ReceivedDate, err = parseDate("date", opts.Date); err != nil {
				return err
			}
			if req.EventID, err = optionalInt64(cmd, "event"); err != nil {
				return err
			}
			for _, a := range opts.Amounts {
				m, err := parseMoney("amount", a)
				if err != nil {
					return err
				}
				req.Amounts = append(req.Amounts, m)
			}
			return withSession(opts.RootOptions, cmd, func(s *session) error {
				p, err := s.ledger.RecordPayment(cmd.Context(), req)
				if err != nil {
					return s.fail("payment record", err)
				}
				return s.out.Report(formatPayment(p), p)
			})
		},
	}
	cmd.Flags().Int64Var(&opts.Person, "person", 0, "paying person id (required)")
	cmd.Flags().Int64("event", 0, "event the payment was taken at")
	cmd.Flags().StringVar(&opts.Date, "date", "", "date received YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&opts.Method, "method", "", "payment method, e.g. cash")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "notes")
	cmd.Flags().StringArrayVar(&opts.Amounts, "amount", nil, "item amount (repeatable, required)")
	_ = cmd.MarkFlagRequired("person")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func formatPayment(p model.Payment) string {
	var b strings.Builder
	total, err := p.Total()
	if err != nil {
		fmt.Fprintf(&b, "payment %d (%s)", p.ID, p.Reference)
	} else {
		fmt.Fprintf(&b, "payment %d (%s): %s on %s", p.ID, p.Reference, total, p.ReceivedDate)
	}
	for _, item := range p.Items {
		fmt.Fprintf(&b, "\n  item %d: %s", item.ID, item.Amount)
	}
	return b.String()
}
