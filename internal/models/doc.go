// Package models defines the core domain models for Splitledger.
//
// # Models
//
//   - User: registered account, identified by unique email
//   - Group: named collection of users with admin/member roles
//   - Expense: a single payment event, split among participants
//   - Split: one user's share of one expense
//   - Settlement: a recorded payment that reduces outstanding balances
//
// Pairwise balances are deliberately NOT a model: they are derived from
// splits and settlements by the ledger package and never stored as primary
// truth. Storing them would invite drift between the stored totals and the
// ledger.
//
// # Design Principles
//
//  1. **Exact money**: all amounts are minor-currency-unit integers
//     (money.Amount). No floats anywhere near balances.
//  2. **Avoid circular references**: relationships use ID strings, not
//     pointers.
//  3. **Append-mostly ledger**: expenses are mutable by their creator until
//     a settlement covers them; settlements are immutable once created.
//     Corrections are new, offsetting settlements.
package models
