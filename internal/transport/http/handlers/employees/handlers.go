package employeehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hrpay/internal/domain/audit"
	"hrpay/internal/domain/auth"
	"hrpay/internal/domain/employee"
	"hrpay/internal/transport/http/api"
	"hrpay/internal/transport/http/middleware"
	"hrpay/internal/transport/http/shared"
)

type Handler struct {
	Store *employee.Store
	Audit audit.Recorder
}

func NewHandler(store *employee.Store, recorder audit.Recorder) *Handler {
	return &Handler{Store: store, Audit: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCreateEmployee)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermReadEmployee)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermReadEmployee)).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermUpdateEmployee)).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermUpdateEmployee)).Post("/{employeeID}/terminate", h.handleTerminate)
		r.With(middleware.RequirePermission(auth.PermDeleteEmployee)).Delete("/{employeeID}", h.handleDelete)
	})
}

type employeePayload struct {
	FirstName      string            `json:"firstName"`
	LastName       string            `json:"lastName"`
	Email          string            `json:"email"`
	DepartmentID   string            `json:"departmentId"`
	Position       string            `json:"position"`
	EmploymentType string            `json:"employmentType"`
	JoiningDate    string            `json:"joiningDate"`
	BaseSalary     float64           `json:"baseSalary"`
	Currency       string            `json:"currency"`
	PayFrequency   string            `json:"payFrequency"`
	OvertimeRate   float64           `json:"overtimeRate"`
	TaxRate        *float64          `json:"taxRate"`
	TaxExemptions  int               `json:"taxExemptions"`
	Benefits       employee.Benefits `json:"benefits"`
	Bank           employee.BankInfo `json:"bankDetails"`
}

var frequencies = []string{employee.FrequencyMonthly, employee.FrequencyBiweekly, employee.FrequencyWeekly}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := &shared.Validator{}
	v.Required("firstName", payload.FirstName, "first name is required")
	v.Required("lastName", payload.LastName, "last name is required")
	v.Email("email", payload.Email)
	v.Required("departmentId", payload.DepartmentID, "department is required")
	v.Positive("baseSalary", payload.BaseSalary, "base salary must be positive")
	if payload.PayFrequency != "" {
		v.Enum("payFrequency", payload.PayFrequency, frequencies, "unknown pay frequency")
	}
	if payload.EmploymentType != "" {
		v.Enum("employmentType", payload.EmploymentType, employee.EmploymentTypes, "unknown employment type")
	}
	joining, ok := v.Date("joiningDate", payload.JoiningDate)
	if v.Reject(w, reqID) || !ok {
		return
	}

	emp := employee.Employee{
		FirstName:      payload.FirstName,
		LastName:       payload.LastName,
		Email:          payload.Email,
		DepartmentID:   payload.DepartmentID,
		Position:       payload.Position,
		EmploymentType: payload.EmploymentType,
		JoiningDate:    joining,
		BaseSalary:     payload.BaseSalary,
		Currency:       payload.Currency,
		PayFrequency:   payload.PayFrequency,
		OvertimeRate:   payload.OvertimeRate,
		TaxRate:        payload.TaxRate,
		TaxExemptions:  payload.TaxExemptions,
		Benefits:       payload.Benefits,
		Bank:           payload.Bank,
		IsActive:       true,
	}
	if emp.Currency == "" {
		emp.Currency = "USD"
	}
	if emp.PayFrequency == "" {
		emp.PayFrequency = employee.FrequencyMonthly
	}

	created, err := h.Store.Insert(r.Context(), emp)
	if err != nil {
		writeEmployeeError(w, reqID, err, "employee_create_failed", "failed to create employee")
		return
	}

	h.Audit.Record(r.Context(), audit.Entry{
		ActorID:    actor.ID,
		Action:     "employee.create",
		Resource:   "employee",
		ResourceID: created.ID,
		Details:    map[string]any{"code": created.Code, "email": created.Email},
		IP:         shared.ClientIP(r),
		UserAgent:  r.UserAgent(),
	})
	api.Created(w, created, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 20, 100)

	filter := employee.Filter{
		DepartmentID: r.URL.Query().Get("departmentId"),
		Search:       r.URL.Query().Get("search"),
	}
	if raw := r.URL.Query().Get("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}

	emps, total, err := h.Store.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", reqID)
		return
	}
	api.Success(w, map[string]any{
		"employees":  emps,
		"pagination": shared.PageMeta{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	emp, err := h.Store.FindByID(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		writeEmployeeError(w, reqID, err, "employee_get_failed", "failed to load employee")
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())

	emp, err := h.Store.FindByID(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		writeEmployeeError(w, reqID, err, "employee_update_failed", "failed to update employee")
		return
	}

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := &shared.Validator{}
	v.Required("firstName", payload.FirstName, "first name is required")
	v.Required("lastName", payload.LastName, "last name is required")
	v.Email("email", payload.Email)
	v.Positive("baseSalary", payload.BaseSalary, "base salary must be positive")
	if payload.PayFrequency != "" {
		v.Enum("payFrequency", payload.PayFrequency, frequencies, "unknown pay frequency")
	}
	if v.Reject(w, reqID) {
		return
	}

	emp.FirstName = payload.FirstName
	emp.LastName = payload.LastName
	emp.Email = payload.Email
	emp.Position = payload.Position
	emp.BaseSalary = payload.BaseSalary
	emp.OvertimeRate = payload.OvertimeRate
	emp.TaxRate = payload.TaxRate
	emp.TaxExemptions = payload.TaxExemptions
	emp.Benefits = payload.Benefits
	emp.Bank = payload.Bank
	if payload.DepartmentID != "" {
		emp.DepartmentID = payload.DepartmentID
	}
	if payload.EmploymentType != "" {
		emp.EmploymentType = payload.EmploymentType
	}
	if payload.Currency != "" {
		emp.Currency = payload.Currency
	}
	if payload.PayFrequency != "" {
		emp.PayFrequency = payload.PayFrequency
	}

	updated, err := h.Store.Update(r.Context(), emp)
	if err != nil {
		writeEmployeeError(w, reqID, err, "employee_update_failed", "failed to update employee")
		return
	}

	h.Audit.Record(r.Context(), audit.Entry{
		ActorID:    actor.ID,
		Action:     "employee.update",
		Resource:   "employee",
		ResourceID: updated.ID,
		Details:    map[string]any{"code": updated.Code},
		IP:         shared.ClientIP(r),
		UserAgent:  r.UserAgent(),
	})
	api.Success(w, updated, reqID)
}

func (h *Handler) handleTerminate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())

	var payload struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := &shared.Validator{}
	v.Required("reason", payload.Reason, "termination reason is required")
	if v.Reject(w, reqID) {
		return
	}

	emp, err := h.Store.Terminate(r.Context(), chi.URLParam(r, "employeeID"), payload.Reason)
	if err != nil {
		writeEmployeeError(w, reqID, err, "employee_terminate_failed", "failed to terminate employee")
		return
	}

	h.Audit.Record(r.Context(), audit.Entry{
		ActorID:    actor.ID,
		Action:     "employee.terminate",
		Resource:   "employee",
		ResourceID: emp.ID,
		Details:    map[string]any{"code": emp.Code, "reason": payload.Reason},
		IP:         shared.ClientIP(r),
		UserAgent:  r.UserAgent(),
	})
	api.Success(w, emp, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())

	employeeID := chi.URLParam(r, "employeeID")
	if err := h.Store.Delete(r.Context(), employeeID); err != nil {
		writeEmployeeError(w, reqID, err, "employee_delete_failed", "failed to delete employee")
		return
	}

	h.Audit.Record(r.Context(), audit.Entry{
		ActorID:    actor.ID,
		Action:     "employee.delete",
		Resource:   "employee",
		ResourceID: employeeID,
		IP:         shared.ClientIP(r),
		UserAgent:  r.UserAgent(),
	})
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func writeEmployeeError(w http.ResponseWriter, reqID string, err error, code, fallback string) {
	switch {
	case errors.Is(err, employee.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
	case errors.Is(err, employee.ErrEmployeeExists):
		api.Fail(w, http.StatusConflict, "duplicate_resource", "employee email already registered", reqID)
	case errors.Is(err, employee.ErrDepartmentNotFound):
		api.Fail(w, http.StatusBadRequest, "validation_error", "department not found", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, fallback, reqID)
	}
}
