// Package accounts provides self-service account registration with email
// confirmation, credential login, and admin-driven bulk account management.
//
// Account lifecycle:
//   - Accounts are created unverified and carry a single-use confirmation
//     token. Redeeming the token flips the confirmation flag and burns the
//     token, so a second visit to the same link fails cleanly.
//   - Admins block, unblock, and delete accounts in bulk. Blocking is a
//     reversible flag, deletion removes the record. Bulk operations report
//     how many rows actually changed, selections already in the target
//     state do not count.
//
// Session validity:
//   - Logins mint a JWT carried in an HTTP-only cookie. The token proves
//     who the caller is, not that the account is still welcome. The
//     AccountStatusGate middleware re-checks the account on every request
//     and terminates sessions whose account was blocked or deleted after
//     the token was issued.
package accounts
