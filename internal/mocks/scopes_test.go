package mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMemoryScopesIsolateOwners(t *testing.T) {
	ctx := context.Background()
	scopes := NewMemoryScopes()
	alice, bob := uuid.New(), uuid.New()

	emp, err := domain.NewEmployee(alice, "Ivan", "", "", testNow)
	require.NoError(t, err)
	require.NoError(t, scopes.ForOwner(alice).Employees().Create(ctx, emp))

	list, err := scopes.ForOwner(bob).Employees().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = scopes.ForOwner(bob).Employees().Get(ctx, emp.ID)
	assert.ErrorIs(t, err, store.ErrEmployeeNotFound)

	err = scopes.ForOwner(bob).Employees().Delete(ctx, emp.ID)
	assert.ErrorIs(t, err, store.ErrEmployeeNotFound)

	_, ok := scopes.Employee(emp.ID)
	assert.True(t, ok)
}

func TestMemoryScopesRollBackOnError(t *testing.T) {
	ctx := context.Background()
	scopes := NewMemoryScopes()
	owner := uuid.New()
	boom := errors.New("boom")

	var created uuid.UUID
	err := scopes.RunInTx(ctx, owner, func(ctx context.Context, scope store.Scope) error {
		emp, err := domain.NewEmployee(owner, "Ivan", "", "", testNow)
		require.NoError(t, err)
		created = emp.ID
		require.NoError(t, scope.Employees().Create(ctx, emp))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	_, ok := scopes.Employee(created)
	assert.False(t, ok, "write inside a failed transaction must be discarded")
	assert.Equal(t, 1, scopes.TxCount())
}

func TestMemoryScopesFailOn(t *testing.T) {
	ctx := context.Background()
	scopes := NewMemoryScopes()
	boom := errors.New("connection reset")

	scopes.FailOn(OpTasksStats, boom)
	_, err := scopes.ForOwner(uuid.New()).Tasks().Stats(ctx, testNow)
	assert.ErrorIs(t, err, boom)

	scopes.FailOn(OpTasksStats, nil)
	_, err = scopes.ForOwner(uuid.New()).Tasks().Stats(ctx, testNow)
	assert.NoError(t, err)

	scopes.FailOn(OpTxBegin, boom)
	err = scopes.RunInTx(ctx, uuid.New(), func(ctx context.Context, scope store.Scope) error {
		t.Fatal("callback must not run when begin fails")
		return nil
	})
	assert.ErrorIs(t, err, store.ErrTransactionFailed)
}

func TestMemoryTaskStoreEmbedsEmployee(t *testing.T) {
	ctx := context.Background()
	scopes := NewMemoryScopes()
	owner := uuid.New()

	emp, err := domain.NewEmployee(owner, "Ivan", "Dev", "ivan", testNow)
	require.NoError(t, err)
	scopes.AddEmployee(*emp)

	task, err := domain.NewTask(owner, emp.ID, "Ship", "", testNow.Add(time.Hour), "", "", testNow)
	require.NoError(t, err)
	require.NoError(t, scopes.ForOwner(owner).Tasks().Create(ctx, task))

	got, err := scopes.ForOwner(owner).Tasks().Get(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Employee)
	assert.Equal(t, "Ivan", got.Employee.Name)

	locked, err := scopes.ForOwner(owner).Tasks().GetForUpdate(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, locked.Employee)

	assert.ErrorIs(t, scopes.ForOwner(owner).Employees().Delete(ctx, emp.ID), store.ErrReferenced)
}
