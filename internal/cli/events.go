package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rksledger/internal/ledger"
	"github.com/roach88/rksledger/internal/model"
)

// eventTimeLayout is the local wall-clock format accepted by --starts-at and
// --ends-at.
const eventTimeLayout = "2006-01-02 15:04"

// NewEventTypeCommand creates the event-type command group.
func NewEventTypeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event-type",
		Short: "Manage event types and their default door fees",
	}
	cmd.AddCommand(newEventTypeAddCommand(rootOpts))
	cmd.AddCommand(newFeeCommand(rootOpts, "event-type", "Set an event type's default door fee",
		func(l *ledger.Ledger, cmd *cobra.Command, id int64, fee model.DoorFee) error {
			return l.SetEventTypeDefaultFee(cmd.Context(), id, fee)
		}))
	return cmd
}

func newEventTypeAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		defaultStart    string
		defaultDuration int
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an event type",
		Long: `Add an event type. The default start time and duration are used when an
event is created with only a date.

Example:
  rksledger event-type add "Open Floor" --default-start 19:00 --default-duration 180`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			et := model.EventType{Name: args[0]}
			if defaultStart != "" {
				t, err := model.ParseTimeOfDay(defaultStart)
				if err != nil {
					return NewExitError(ExitCommandError, fmt.Sprintf("invalid --default-start: %v", err))
				}
				et.DefaultStartTime = &t
			}
			if cmd.Flags().Changed("default-duration") {
				et.DefaultDurationMinutes = &defaultDuration
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				var err error
				et.ID, err = s.ledger.CreateEventType(cmd.Context(), et)
				if err != nil {
					return s.fail("event-type add", err)
				}
				et.Name = model.NormalizeText(et.Name)
				return s.out.Report(fmt.Sprintf("event type %d: %s", et.ID, et.Name), et)
			})
		},
	}
	cmd.Flags().StringVar(&defaultStart, "default-start", "", "default start time HH:MM")
	cmd.Flags().IntVar(&defaultDuration, "default-duration", 0, "default duration in minutes")
	return cmd
}

// FeeResult is the output of the fee commands.
type FeeResult struct {
	Target           string `json:"target"`
	ID               int64  `json:"id"`
	MembershipTypeID *int64 `json:"membership_type_id"`
	Fee              string `json:"fee"`
}

type setFeeFunc func(l *ledger.Ledger, cmd *cobra.Command, id int64, fee model.DoorFee) error

// newFeeCommand builds "<target> fee", shared by event types and events.
// Omitting --membership-type sets the non-member fee.
func newFeeCommand(rootOpts *RootOptions, target, short string, set setFeeFunc) *cobra.Command {
	var (
		id  int64
		fee string
	)

	cmd := &cobra.Command{
		Use:   "fee",
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseMoney("fee", fee)
			if err != nil {
				return err
			}
			mt, err := optionalInt64(cmd, "membership-type")
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				if err := set(s.ledger, cmd, id, model.DoorFee{MembershipTypeID: mt, Fee: amount}); err != nil {
					return s.fail(target+" fee", err)
				}
				who := "non-members"
				if mt != nil {
					who = fmt.Sprintf("membership type %d", *mt)
				}
				return s.out.Report(
					fmt.Sprintf("%s %d: door fee for %s is %s", target, id, who, amount),
					FeeResult{Target: target, ID: id, MembershipTypeID: mt, Fee: amount.String()})
			})
		},
	}
	cmd.Flags().Int64Var(&id, target, 0, target+" id (required)")
	cmd.Flags().Int64("membership-type", 0, "membership type id (omit for the non-member fee)")
	cmd.Flags().StringVar(&fee, "fee", "", "fee amount, e.g. 10.00 (required)")
	_ = cmd.MarkFlagRequired(target)
	_ = cmd.MarkFlagRequired("fee")
	return cmd
}

// NewEventCommand creates the event command group.
func NewEventCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Schedule events and override their door fees",
	}
	cmd.AddCommand(newEventAddCommand(rootOpts))
	cmd.AddCommand(newEventShowCommand(rootOpts))
	cmd.AddCommand(newFeeCommand(rootOpts, "event", "Override an event's door fee",
		func(l *ledger.Ledger, cmd *cobra.Command, id int64, fee model.DoorFee) error {
			return l.SetEventDoorFee(cmd.Context(), id, fee)
		}))
	return cmd
}

func newEventAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		eventType int64
		name      string
		date      string
		startsAt  string
		endsAt    string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule an event",
		Long: `Schedule an event. Give --date to use the event type's default start time
and duration, or --starts-at and --ends-at ("YYYY-MM-DD HH:MM", local time).

Example:
  rksledger event add --event-type 1 --name "Open Floor" --date 2024-05-03`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ledger.EventRequest{EventTypeID: eventType, Name: name}
			var err error
			if req.Date, err = parseDate("date", date); err != nil {
				return err
			}
			if req.StartsAt, err = parseEventTime("starts-at", startsAt); err != nil {
				return err
			}
			if req.EndsAt, err = parseEventTime("ends-at", endsAt); err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				e, err := s.ledger.CreateEvent(cmd.Context(), req)
				if err != nil {
					return s.fail("event add", err)
				}
				return s.out.Report(formatEvent(e), e)
			})
		},
	}
	cmd.Flags().Int64Var(&eventType, "event-type", 0, "event type id (required)")
	cmd.Flags().StringVar(&name, "name", "", "event name (required)")
	cmd.Flags().StringVar(&date, "date", "", "event date YYYY-MM-DD")
	cmd.Flags().StringVar(&startsAt, "starts-at", "", `start "YYYY-MM-DD HH:MM"`)
	cmd.Flags().StringVar(&endsAt, "ends-at", "", `end "YYYY-MM-DD HH:MM"`)
	_ = cmd.MarkFlagRequired("event-type")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newEventShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <event-id>",
		Short: "Show an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				e, err := s.ledger.GetEvent(cmd.Context(), id)
				if err != nil {
					return s.fail("event show", err)
				}
				return s.out.Report(formatEvent(e), e)
			})
		},
	}
}

func parseEventTime(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(eventTimeLayout, value, time.Local)
	if err != nil {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid --%s: %v", name, err))
	}
	return &t, nil
}

func formatEvent(e model.Event) string {
	return fmt.Sprintf("event %d: %s, %s to %s", e.ID, e.Name,
		e.StartsAt.Format(eventTimeLayout), e.EndsAt.Format(eventTimeLayout))
}

// NewDoorFeeCommand creates the door-fee command group.
func NewDoorFeeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "door-fee",
		Short: "Resolve and pay event door fees",
	}
	cmd.AddCommand(newDoorFeeResolveCommand(rootOpts))
	cmd.AddCommand(newDoorFeePayCommand(rootOpts))
	return cmd
}

func newDoorFeeResolveCommand(rootOpts *RootOptions) *cobra.Command {
	var event int64

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show the door fee for an event and membership type",
		Long: `Show the door fee an attendee pays. The event's own fee wins over the
event type's default. Omit --membership-type for the non-member fee.

Example:
  rksledger door-fee resolve --event 3 --membership-type 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mt, err := optionalInt64(cmd, "membership-type")
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				fee, err := s.ledger.ResolveDoorFee(cmd.Context(), event, mt)
				if err != nil {
					return s.fail("door-fee resolve", err)
				}
				return s.out.Report(fmt.Sprintf("%s (%s)", fee.Amount, fee.Source), fee)
			})
		},
	}
	cmd.Flags().Int64Var(&event, "event", 0, "event id (required)")
	cmd.Flags().Int64("membership-type", 0, "membership type id (omit for non-members)")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}

func newDoorFeePayCommand(rootOpts *RootOptions) *cobra.Command {
	var event, item int64

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Apply a payment item to an event's door fee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mt, err := optionalInt64(cmd, "membership-type")
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				p, err := s.ledger.PayDoorFee(cmd.Context(), ledger.DoorFeeRequest{
					PaymentItemID:    item,
					EventID:          event,
					MembershipTypeID: mt,
				})
				if err != nil {
					return s.fail("door-fee pay", err)
				}
				return s.out.Report(
					fmt.Sprintf("payment item %d paid the door fee for event %d", p.PaymentItemID, p.EventID), p)
			})
		},
	}
	cmd.Flags().Int64Var(&event, "event", 0, "event id (required)")
	cmd.Flags().Int64Var(&item, "item", 0, "payment item id (required)")
	cmd.Flags().Int64("membership-type", 0, "membership type id (omit for non-members)")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

// NewAttendCommand creates the attend command.
func NewAttendCommand(rootOpts *RootOptions) *cobra.Command {
	var event, person int64

	cmd := &cobra.Command{
		Use:   "attend",
		Short: "Record a person at an event",
		Long: `Record a person at an event. With --guest-of the sponsor must hold a
membership active on the event date.

Example:
  rksledger attend --event 3 --person 5 --guest-of 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sponsor, err := optionalInt64(cmd, "guest-of")
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				a, err := s.ledger.RecordAttendance(cmd.Context(), model.Attendance{
					EventID:         event,
					PersonID:        person,
					GuestOfMemberID: sponsor,
				})
				if err != nil {
					return s.fail("attend", err)
				}
				return s.out.Report(fmt.Sprintf("attendance %d: person %d at event %d", a.ID, a.PersonID, a.EventID), a)
			})
		},
	}
	cmd.Flags().Int64Var(&event, "event", 0, "event id (required)")
	cmd.Flags().Int64Var(&person, "person", 0, "person id (required)")
	cmd.Flags().Int64("guest-of", 0, "sponsoring member's person id")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("person")
	return cmd
}

// NewRSVPCommand creates the rsvp command.
func NewRSVPCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		event, person int64
		date          string
	)

	cmd := &cobra.Command{
		Use:   "rsvp",
		Short: "Record a person's RSVP for an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sponsor, err := optionalInt64(cmd, "guest-of")
			if err != nil {
				return err
			}
			received, err := parseDate("date", date)
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				r, err := s.ledger.RecordRSVP(cmd.Context(), model.RSVP{
					EventID:         event,
					PersonID:        person,
					ReceivedDate:    received,
					GuestOfMemberID: sponsor,
				})
				if err != nil {
					return s.fail("rsvp", err)
				}
				return s.out.Report(fmt.Sprintf("rsvp %d: person %d for event %d", r.ID, r.PersonID, r.EventID), r)
			})
		},
	}
	cmd.Flags().Int64Var(&event, "event", 0, "event id (required)")
	cmd.Flags().Int64Var(&person, "person", 0, "person id (required)")
	cmd.Flags().Int64("guest-of", 0, "sponsoring member's person id")
	cmd.Flags().StringVar(&date, "date", "", "date received YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("person")
	return cmd
}
