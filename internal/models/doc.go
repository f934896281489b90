// Package models defines the persisted domain records of Payly.
//
// # Records
//
//   - User: a registered account; its ID is the member identity used everywhere else
//   - Group: a set of members sharing expenses, with an optional default currency
//   - Expense: an amount fronted by one member and split among participants
//   - Settlement: a recorded payment from one member to another
//
// Relationships are expressed with ID strings rather than pointers. Member display
// fields are resolved by the service layer when balances are computed.
package models
