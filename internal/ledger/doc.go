// Package ledger implements the business rules of the membership ledger on
// top of the store.
//
// The store enforces every invariant that can be stated over stored rows. The
// ledger adds the rules that depend on configuration or on the current date:
//
//   - RenewMembership computes a membership's new end date from a pricing
//     option and the organization's renewal base policy, and applies it
//     together with its dues payment audit row.
//   - ResolveDoorFee finds the fee a membership type owes at an event: the
//     event's own fee if set, otherwise the event type's default.
//   - ProjectGuestSheet creates a person from a guest info sheet's tagged
//     fields and links the sheet to it.
//   - RecordAttendance and RecordRSVP require a guest's sponsor to hold a
//     membership active on the event date.
//
// Every operation that writes more than one row runs inside one store
// transaction, so a failure leaves nothing behind.
//
// # Concurrency
//
// A Ledger is safe for concurrent use. Write transactions take SQLite's write
// lock when they begin, so two renewals of the same membership run one after
// the other and the second extends from the first one's result.
package ledger
