// Package model defines the entities of the membership ledger and the value
// types they are built from.
//
// This package contains type definitions only. Every other internal package
// imports model; model imports nothing internal.
//
// Key design constraints:
//   - Monetary amounts are exact decimals (Money), never floats
//   - Calendar dates (Date) carry no time zone and are stored as YYYY-MM-DD text
//   - A nil *Date end date means open-ended (non-expiring membership, permanent ban)
//   - Names, aliases, email addresses and sheet field names are NFC normalized
//     before they reach a uniqueness constraint
package model
