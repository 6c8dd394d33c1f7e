// Package models defines the core domain models for billsplit.
//
// # Entities
//
//   - Bill: one dining session with its adjustment rates and payee details
//   - BillItem: a priced, quantified line on a bill
//   - Person: a participant of one bill, or a reusable contact
//   - ItemSplit: how much of one item one person owes
//
// # Design Principles
//
// 1. **Flat tables**: relationships are expressed as ID strings (foreign keys),
// never as pointers, so the object graph has no cycles
// 2. **Exact money**: every amount and rate is a decimal.Decimal; rounding
// happens only when formatting for display
// 3. **Snapshots**: readers receive a Snapshot, a deep copy of one bill and
// everything it owns, and never see the mutable tables directly
package models
