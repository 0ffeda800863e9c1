package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/mocks"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

func newEmployeeService(t *testing.T, scopes *mocks.MemoryScopes) EmployeeService {
	t.Helper()
	svc, err := NewEmployeeService(scopes, discardLogger())
	require.NoError(t, err)
	svc.(*employeeServiceImpl).timeFunc = fixedClock(testNow)
	return svc
}

func TestNewEmployeeServiceValidation(t *testing.T) {
	_, err := NewEmployeeService(nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEmployeeCreateAndList(t *testing.T) {
	scopes := mocks.NewMemoryScopes()
	svc := newEmployeeService(t, scopes)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, EmployeeInput{Name: " Ivan ", Position: "Dev", Telegram: "@ivan"})
	require.NoError(t, err)
	assert.Equal(t, owner, created.OwnerID)
	assert.Equal(t, "Ivan", created.Name)
	assert.Equal(t, "ivan", created.Telegram)

	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	_, err = svc.Create(ctx, owner, EmployeeInput{Name: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEmployeesOfOtherOwnersAreInvisible(t *testing.T) {
	scopes := mocks.NewMemoryScopes()
	svc := newEmployeeService(t, scopes)
	ctx := context.Background()
	owner, intruder := uuid.New(), uuid.New()
	employee := addEmployee(t, scopes, owner, "Ivan")

	list, err := svc.List(ctx, intruder)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Update(ctx, intruder, employee.ID, domain.EmployeePatch{Name: ptr("Hacked")})
	assert.ErrorIs(t, err, store.ErrEmployeeNotFound)

	err = svc.Delete(ctx, intruder, employee.ID)
	assert.ErrorIs(t, err, store.ErrEmployeeNotFound)

	stored, ok := scopes.Employee(employee.ID)
	require.True(t, ok)
	assert.Equal(t, "Ivan", stored.Name)
}

func TestEmployeeUpdateMergesProvidedFields(t *testing.T) {
	scopes := mocks.NewMemoryScopes()
	svc := newEmployeeService(t, scopes)
	owner := uuid.New()
	employee, err := domain.NewEmployee(owner, "Ivan", "Dev", "ivan", testNow.Add(-time.Hour))
	require.NoError(t, err)
	scopes.AddEmployee(*employee)

	updated, err := svc.Update(context.Background(), owner, employee.ID, domain.EmployeePatch{Position: ptr("Lead")})

	require.NoError(t, err)
	assert.Equal(t, "Ivan", updated.Name)
	assert.Equal(t, "Lead", updated.Position)
	assert.Equal(t, "ivan", updated.Telegram)
	assert.Equal(t, testNow, updated.UpdatedAt)

	_, err = svc.Update(context.Background(), owner, employee.ID, domain.EmployeePatch{Name: ptr("  ")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	stored, _ := scopes.Employee(employee.ID)
	assert.Equal(t, "Ivan", stored.Name)
}

func TestEmployeeDelete(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("without tasks", func(t *testing.T) {
		scopes := mocks.NewMemoryScopes()
		svc := newEmployeeService(t, scopes)
		employee := addEmployee(t, scopes, owner, "Ivan")

		require.NoError(t, svc.Delete(ctx, owner, employee.ID))

		_, ok := scopes.Employee(employee.ID)
		assert.False(t, ok)
	})

	t.Run("with a task", func(t *testing.T) {
		scopes := mocks.NewMemoryScopes()
		svc := newEmployeeService(t, scopes)
		employee := addEmployee(t, scopes, owner, "Ivan")
		task, err := domain.NewTask(owner, employee.ID, "Report", "", testNow, "", "", testNow)
		require.NoError(t, err)
		scopes.AddTask(*task)

		err = svc.Delete(ctx, owner, employee.ID)

		assert.ErrorIs(t, err, ErrEmployeeHasTasks)
		_, ok := scopes.Employee(employee.ID)
		assert.True(t, ok)
	})

	t.Run("task assigned after the count", func(t *testing.T) {
		scopes := mocks.NewMemoryScopes()
		svc := newEmployeeService(t, scopes)
		employee := addEmployee(t, scopes, owner, "Ivan")
		scopes.FailOn(mocks.OpEmployeesDelete, store.ErrReferenced)

		err := svc.Delete(ctx, owner, employee.ID)

		assert.ErrorIs(t, err, ErrEmployeeHasTasks)
	})

	t.Run("missing", func(t *testing.T) {
		scopes := mocks.NewMemoryScopes()
		svc := newEmployeeService(t, scopes)

		err := svc.Delete(ctx, owner, uuid.New())

		assert.ErrorIs(t, err, store.ErrEmployeeNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		scopes := mocks.NewMemoryScopes()
		svc := newEmployeeService(t, scopes)
		employee := addEmployee(t, scopes, owner, "Ivan")
		scopes.FailOn(mocks.OpEmployeesCount, errors.New("connection reset"))

		err := svc.Delete(ctx, owner, employee.ID)

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "delete", svcErr.Operation)
	})
}
