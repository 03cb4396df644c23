// Package rbac holds the static role based access control model of the
// dashboard.
//
// A user carries exactly one Role from a closed set. Every role maps to a
// fixed set of Permission values of the form "resource:action". The table is
// compiled into the binary; nothing is loaded from the database.
//
// Lookups fail closed: a role that is not part of the table resolves to the
// empty permission set. Route level restrictions are handled by the
// navigation package and default open when unspecified.
package rbac
