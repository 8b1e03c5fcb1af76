// Package models defines the core domain models for splitpool.
//
// # Entities
//
//   - Member: a registered person (identity plus mutable profile fields)
//   - Pool: a named group of members sharing expenses
//   - PoolMembership: a member's role and default split percentage within a pool
//   - Expense: an amount paid by one member on behalf of the pool
//   - ExpenseLineItem: the share of one expense owed by one debtor
//   - CategoryRule: a member's regex → category suggestion rule
//   - Settlement: the record left behind by a pool-wide settle up
//
// # Design Principles
//
//  1. Money is always decimal.Decimal rounded to 2 places, never float64.
//  2. Relationships use ID strings instead of pointers.
//  3. Balances are derived from unsettled line items and never stored.
package models
