// Package models defines the core domain records for SplitSmart.
//
// # Records
//
//   - User: a registered person, identified by name
//   - Group: a named, add-only set of members
//   - Expense: a payment split among participants, with shares fixed at creation
//   - Settlement: a direct payment from one member to another
//
// Debts are not modelled here. They are derived from a group's expense and
// settlement history on demand (see package ledger) and never stored.
//
// # Design Principles
//
// 1. **Names as identity**: people are referenced by their unique name
// 2. **Value copies**: records hold names and copied maps/slices, never pointers into other records
// 3. **Append-only history**: expenses and settlements are written once and never updated
package models
