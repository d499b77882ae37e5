// Package store provides SQLite-backed durable storage for the membership
// ledger.
//
// Every relationship of the ledger is a table with declared foreign keys, and
// every invariant that can be stated over stored rows is enforced by the
// database itself:
//   - UNIQUE constraints for natural keys (type names, phone 4-tuples, door
//     fee keys, guest sheet field name/behavior/position)
//   - Partial unique indexes where the key includes NULL (one primary email
//     per person, one non-member door fee per event or event type)
//   - CHECK constraints for date ordering (membership, sanction, ban, dues)
//   - Triggers for cross-table rules: a payment item pays dues or a door fee
//     but never both, people are never deleted, payments and dues payments are
//     append-only, and a membership's end date only moves to the value its
//     latest dues payment recorded
//
// # Transactions
//
// InTx runs a function inside one transaction and carries the transaction in
// the context. Every Store method looks the transaction up from its context,
// so ledger operations compose store calls and commit or roll back as a unit.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - _txlock=immediate: Write transactions take the write lock at BEGIN, so
//     two renewals of the same membership serialize instead of racing
//
// # Errors
//
// Constraint failures, including trigger aborts, are returned as
// model.ErrCodeConstraintViolation with the driver error kept verbatim.
// Lookups of missing rows return model.ErrCodeNotFound.
package store
