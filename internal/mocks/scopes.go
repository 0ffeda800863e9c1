package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

// Operation names accepted by MemoryScopes.FailOn.
const (
	OpTxBegin           = "tx.Begin"
	OpTxCommit          = "tx.Commit"
	OpEmployeesList     = "employees.List"
	OpEmployeesGet      = "employees.Get"
	OpEmployeesCreate   = "employees.Create"
	OpEmployeesUpdate   = "employees.Update"
	OpEmployeesDelete   = "employees.Delete"
	OpEmployeesCount    = "employees.CountTasks"
	OpTasksList         = "tasks.List"
	OpTasksGet          = "tasks.Get"
	OpTasksGetForUpdate = "tasks.GetForUpdate"
	OpTasksCreate       = "tasks.Create"
	OpTasksUpdate       = "tasks.Update"
	OpTasksDelete       = "tasks.Delete"
	OpTasksStats        = "tasks.Stats"
	OpConfigGetOrCreate = "config.GetOrCreate"
	OpConfigFind        = "config.Find"
	OpConfigSave        = "config.Save"
)

// MemoryScopes is an in-memory store.Scopes. Records are partitioned by owner
// the same way the SQL stores filter by owner_id, and RunInTx discards every
// write made by a callback that returns an error. Transactions are
// serialized.
type MemoryScopes struct {
	txMu sync.Mutex

	mu        sync.Mutex
	employees map[uuid.UUID]domain.Employee
	tasks     map[uuid.UUID]domain.Task
	configs   map[uuid.UUID]domain.Config
	failures  map[string]error
	txCount   int
}

var _ store.Scopes = (*MemoryScopes)(nil)

// NewMemoryScopes returns an empty MemoryScopes.
func NewMemoryScopes() *MemoryScopes {
	return &MemoryScopes{
		employees: make(map[uuid.UUID]domain.Employee),
		tasks:     make(map[uuid.UUID]domain.Task),
		configs:   make(map[uuid.UUID]domain.Config),
		failures:  make(map[string]error),
	}
}

// FailOn makes every later call of op return err. A nil err clears it.
func (s *MemoryScopes) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// TxCount returns how many transactions were started.
func (s *MemoryScopes) TxCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txCount
}

// ForOwner implements store.Scopes.
func (s *MemoryScopes) ForOwner(ownerID uuid.UUID) store.Scope {
	return &memoryScope{data: s, ownerID: ownerID}
}

// RunInTx implements store.Scopes.
func (s *MemoryScopes) RunInTx(ctx context.Context, ownerID uuid.UUID, fn store.ScopeFn) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.txCount++
	if beginErr := s.failures[OpTxBegin]; beginErr != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: begin: %v", store.ErrTransactionFailed, beginErr)
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
	}()

	if err := fn(ctx, s.ForOwner(ownerID)); err != nil {
		s.restore(snapshot)
		return err
	}

	if commitErr := s.failure(OpTxCommit); commitErr != nil {
		s.restore(snapshot)
		return fmt.Errorf("%w: commit: %v", store.ErrTransactionFailed, commitErr)
	}
	return nil
}

type memorySnapshot struct {
	employees map[uuid.UUID]domain.Employee
	tasks     map[uuid.UUID]domain.Task
	configs   map[uuid.UUID]domain.Config
}

func (s *MemoryScopes) snapshotLocked() memorySnapshot {
	snap := memorySnapshot{
		employees: make(map[uuid.UUID]domain.Employee, len(s.employees)),
		tasks:     make(map[uuid.UUID]domain.Task, len(s.tasks)),
		configs:   make(map[uuid.UUID]domain.Config, len(s.configs)),
	}
	for k, v := range s.employees {
		snap.employees[k] = v
	}
	for k, v := range s.tasks {
		snap.tasks[k] = copyTask(v)
	}
	for k, v := range s.configs {
		snap.configs[k] = v
	}
	return snap
}

func (s *MemoryScopes) restore(snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = snap.employees
	s.tasks = snap.tasks
	s.configs = snap.configs
}

func (s *MemoryScopes) failure(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[op]
}

// AddEmployee stores e as is.
func (s *MemoryScopes) AddEmployee(e domain.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
}

// AddTask stores t as is, without its embedded employee.
func (s *MemoryScopes) AddTask(t domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = copyTask(t)
}

// SetConfig stores c as the config of c.OwnerID.
func (s *MemoryScopes) SetConfig(c domain.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[c.OwnerID] = c
}

// Task returns the stored task with the given ID, regardless of owner.
func (s *MemoryScopes) Task(id uuid.UUID) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	return copyTask(t), ok
}

// Employee returns the stored employee with the given ID, regardless of owner.
func (s *MemoryScopes) Employee(id uuid.UUID) (domain.Employee, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	return e, ok
}

// Config returns the stored config of ownerID.
func (s *MemoryScopes) Config(ownerID uuid.UUID) (domain.Config, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.configs[ownerID]
	return c, ok
}

func copyTask(t domain.Task) domain.Task {
	t.Employee = nil
	t.History = append([]domain.HistoryEntry{}, t.History...)
	if t.CompletedAt != nil {
		completedAt := *t.CompletedAt
		t.CompletedAt = &completedAt
	}
	return t
}

type memoryScope struct {
	data    *MemoryScopes
	ownerID uuid.UUID
}

func (s *memoryScope) OwnerID() uuid.UUID             { return s.ownerID }
func (s *memoryScope) Employees() store.EmployeeStore { return (*memoryEmployees)(s) }
func (s *memoryScope) Tasks() store.TaskStore         { return (*memoryTasks)(s) }
func (s *memoryScope) Config() store.ConfigStore      { return (*memoryConfig)(s) }

type memoryEmployees memoryScope

func (s *memoryEmployees) List(ctx context.Context) ([]domain.Employee, error) {
	if err := s.data.failure(OpEmployeesList); err != nil {
		return nil, err
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	employees := []domain.Employee{}
	for _, e := range s.data.employees {
		if e.OwnerID == s.ownerID {
			employees = append(employees, e)
		}
	}
	sort.Slice(employees, func(i, j int) bool {
		return newerFirst(employees[i].CreatedAt, employees[j].CreatedAt, employees[i].ID, employees[j].ID)
	})
	return employees, nil
}

func (s *memoryEmployees) Get(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	if err := s.data.failure(OpEmployeesGet); err != nil {
		return nil, err
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	e, ok := s.data.employees[id]
	if !ok || e.OwnerID != s.ownerID {
		return nil, store.ErrEmployeeNotFound
	}
	return &e, nil
}

func (s *memoryEmployees) Create(ctx context.Context, employee *domain.Employee) error {
	if err := s.data.failure(OpEmployeesCreate); err != nil {
		return err
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, exists := s.data.employees[employee.ID]; exists {
		return store.ErrDuplicate
	}
	employee.OwnerID = s.ownerID
	s.data.employees[employee.ID] = *employee
	return nil
}

func (s *memoryEmployees) Update(ctx context.Context, employee *domain.Employee) error {
	if err := s.data.failure(OpEmployeesUpdate); err != nil {
		return err
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	existing, ok := s.data.employees[employee.ID]
	if !ok || existing.OwnerID != s.ownerID {
		return store.ErrEmployeeNotFound
	}
	updated := existing
	updated.Name = employee.Name
	updated.Position = employee.Position
	updated.Telegram = employee.Telegram
	updated.UpdatedAt = employee.UpdatedAt
	s.data.employees[employee.ID] = updated
	return nil
}

func (s *memoryEmployees) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.data.failure(OpEmployeesDelete); err != nil {
		return err
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	existing, ok := s.data.employees[id]
	if !ok || existing.OwnerID != s.ownerID {
		return store.ErrEmployeeNotFound
	}
	for _, t := range s.data.tasks {
		if t.EmployeeID == id {
			return store.ErrReferenced
		}
	}
	delete(s.data.employees, id)
	return nil
}

func (s *memoryEmployees) CountTasks(ctx context.Context, id uuid.UUID) (int, error) {
	if err := s.data.failure(OpEmployeesCount); err != nil {
		return 0, err
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	count := 0
	for _, t := range s.data.tasks {
		if t.OwnerID == s.ownerID && t.EmployeeID == id {
			count++
		}
	}
	return count, nil
}

type memoryTasks memoryScope

func (s *memoryTasks) List(ctx context.Context, filter store.TaskFilter) ([]domain.Task, error) {
	if err := s.data.failure(OpTasksList); err != nil {
		return nil, err
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	tasks := []domain.Task{}
	for _, t := range s.data.tasks {
		if t.OwnerID != s.ownerID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		if filter.EmployeeID != nil && t.EmployeeID != *filter.EmployeeID {
			continue
		}
		tasks = append(tasks, s.withEmployeeLocked(t))
	}
	sort.Slice(tasks, func(i, j int) bool {
		return newerFirst(tasks[i].CreatedAt, tasks[j].CreatedAt, tasks[i].ID, tasks[j].ID)
	})
	return tasks, nil
}

func (s *memoryTasks) Get(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if err := s.data.failure(OpTasksGet); err != nil {
		return nil, err
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	t, ok := s.data.tasks[id]
	if !ok || t.OwnerID != s.ownerID {
		return nil, store.ErrTaskNotFound
	}
	found := s.withEmployeeLocked(t)
	return &found, nil
}

func (s *memoryTasks) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if err := s.data.failure(OpTasksGetForUpdate); err != nil {
		return nil, err
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	t, ok := s.data.tasks[id]
	if !ok || t.OwnerID != s.ownerID {
		return nil, store.ErrTaskNotFound
	}
	found := copyTask(t)
	return &found, nil
}

func (s *memoryTasks) Create(ctx context.Context, task *domain.Task) error {
	if err := s.data.failure(OpTasksCreate); err != nil {
		return err
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, exists := s.data.tasks[task.ID]; exists {
		return store.ErrDuplicate
	}
	if _, exists := s.data.employees[task.EmployeeID]; !exists {
		return store.ErrInvalidEntity
	}
	task.OwnerID = s.ownerID
	s.data.tasks[task.ID] = copyTask(*task)
	return nil
}

func (s *memoryTasks) Update(ctx context.Context, task *domain.Task) error {
	if err := s.data.failure(OpTasksUpdate); err != nil {
		return err
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	existing, ok := s.data.tasks[task.ID]
	if !ok || existing.OwnerID != s.ownerID {
		return store.ErrTaskNotFound
	}
	if _, exists := s.data.employees[task.EmployeeID]; !exists {
		return store.ErrInvalidEntity
	}
	updated := copyTask(*task)
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	s.data.tasks[task.ID] = updated
	return nil
}

func (s *memoryTasks) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.data.failure(OpTasksDelete); err != nil {
		return err
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	existing, ok := s.data.tasks[id]
	if !ok || existing.OwnerID != s.ownerID {
		return store.ErrTaskNotFound
	}
	delete(s.data.tasks, id)
	return nil
}

func (s *memoryTasks) Stats(ctx context.Context, now time.Time) (domain.TaskStats, error) {
	if err := s.data.failure(OpTasksStats); err != nil {
		return domain.TaskStats{}, err
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	var tasks []domain.Task
	for _, t := range s.data.tasks {
		if t.OwnerID == s.ownerID {
			tasks = append(tasks, t)
		}
	}
	return domain.ComputeTaskStats(tasks, now), nil
}

func (s *memoryTasks) withEmployeeLocked(t domain.Task) domain.Task {
	t = copyTask(t)
	if e, ok := s.data.employees[t.EmployeeID]; ok {
		t.Employee = &e
	}
	return t
}

type memoryConfig memoryScope

func (s *memoryConfig) GetOrCreate(ctx context.Context, now time.Time) (*domain.Config, error) {
	if err := s.data.failure(OpConfigGetOrCreate); err != nil {
		return nil, err
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	cfg, ok := s.data.configs[s.ownerID]
	if !ok {
		cfg = *domain.NewConfig(s.ownerID, now)
		s.data.configs[s.ownerID] = cfg
	}
	return &cfg, nil
}

func (s *memoryConfig) Find(ctx context.Context) (*domain.Config, error) {
	if err := s.data.failure(OpConfigFind); err != nil {
		return nil, err
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	cfg, ok := s.data.configs[s.ownerID]
	if !ok {
		return nil, store.ErrConfigNotFound
	}
	return &cfg, nil
}

func (s *memoryConfig) Save(ctx context.Context, cfg *domain.Config) error {
	if err := s.data.failure(OpConfigSave); err != nil {
		return err
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	cfg.OwnerID = s.ownerID
	if existing, ok := s.data.configs[s.ownerID]; ok {
		cfg.ID = existing.ID
		cfg.CreatedAt = existing.CreatedAt
	}
	s.data.configs[s.ownerID] = *cfg
	return nil
}

func newerFirst(a, b time.Time, aID, bID uuid.UUID) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID.String() < bID.String()
}
