// Package models defines the core domain models for SettleUp.
//
// # Models
//
//   - User: a person who can pay for or owe on expenses
//   - Group: a set of users sharing expenses
//   - Expense: an amount paid by one member on behalf of the group
//   - Split: one member's obligation arising from an expense
//   - BalanceSummary: net owed per user, always derived from splits
//
// # Design Principles
//
//  1. Relationships use IDs, never pointers, so records serialize flat.
//  2. Amounts are money.Money (integer cents); floats never hold currency.
//  3. Splits only change their Status after creation, and only forward
//     through the state machine in status.go.
package models
