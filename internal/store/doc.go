// Package store defines the persistence interfaces used by the services.
//
// Records other than users always belong to an owner. Services never reach
// employee, task or config storage directly; they ask Scopes for a Scope bound
// to the authenticated caller, and every method on the stores it returns
// filters by that owner. A record owned by someone else is reported as not
// found.
package store
