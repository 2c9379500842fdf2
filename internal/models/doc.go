// Package models defines the core domain models for OurLedger.
//
// # Models
//
//   - User: registered account that can log in
//   - Household / Member: a group of users sharing one ledger. A member ID is
//     distinct from the user ID it belongs to.
//   - Account / Category: what an entry is booked against
//   - Entry: a single income, expense or transfer
//   - SettlementRecord: per-user, per-month settlement amount, optionally finalized
//   - SettlementPayment: money actually handed over between members
//
// # Conventions
//
//  1. Amounts are int64 in the minor currency unit. Floats never hold money.
//  2. Relationships are ID strings, never pointers.
//  3. Calendar dates are "YYYY-MM-DD" strings and months are "YYYY-MM", so
//     lexical order equals chronological order.
//  4. Timestamps are Unix seconds.
package models
