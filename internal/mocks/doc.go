// Package mocks provides shared test doubles for the store, auth and notify
// interfaces.
//
// Most doubles use function fields: a test sets only the behaviour it cares
// about and the rest falls back to a simple default. MemoryScopes is a working
// in-memory implementation of store.Scopes that honours owner isolation and
// rolls back on a failed transaction.
//
// Usage:
//
//	scopes := mocks.NewMemoryScopes()
//	sender := &mocks.MockSender{}
//	svc, err := service.NewTaskService(scopes, emitter, logger)
package mocks
