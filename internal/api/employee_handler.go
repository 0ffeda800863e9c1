package api

import (
	"net/http"

	"github.com/crewdesk/crewdesk-api/internal/api/shared"
	"github.com/crewdesk/crewdesk-api/internal/domain"
	"github.com/crewdesk/crewdesk-api/internal/service"
	"github.com/crewdesk/crewdesk-api/internal/store"
)

// EmployeeHandler serves the employee resource of the calling user.
type EmployeeHandler struct {
	employees service.EmployeeService
}

// NewEmployeeHandler creates an EmployeeHandler.
func NewEmployeeHandler(employees service.EmployeeService) (*EmployeeHandler, error) {
	if employees == nil {
		return nil, domain.NewValidationError("employees", "cannot be nil")
	}
	return &EmployeeHandler{employees: employees}, nil
}

// List handles GET /employees.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	employees, err := h.employees.List(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toEmployeeResponses(employees))
}

// Create handles POST /employees.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req CreateEmployeeRequest
	if _, ok := decodeRequest(w, r, &req); !ok {
		return
	}

	employee, err := h.employees.Create(r.Context(), user.ID, service.EmployeeInput{
		Name:     req.Name,
		Position: req.Position,
		Telegram: req.Telegram,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, toEmployeeResponse(employee))
}

// Update handles PUT /employees/{id}.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, store.ErrEmployeeNotFound)
	if !ok {
		return
	}
	var req UpdateEmployeeRequest
	if _, ok := decodeRequest(w, r, &req); !ok {
		return
	}

	employee, err := h.employees.Update(r.Context(), user.ID, id, domain.EmployeePatch{
		Name:     req.Name,
		Position: req.Position,
		Telegram: req.Telegram,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toEmployeeResponse(employee))
}

// Delete handles DELETE /employees/{id}.
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, store.ErrEmployeeNotFound)
	if !ok {
		return
	}

	if err := h.employees.Delete(r.Context(), user.ID, id); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithMessage(w, r, http.StatusOK, "Employee deleted")
}
