package payrollhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hrpay/internal/domain/audit"
	"hrpay/internal/domain/auth"
	"hrpay/internal/domain/employee"
	"hrpay/internal/domain/payroll"
	"hrpay/internal/transport/http/api"
	"hrpay/internal/transport/http/middleware"
	"hrpay/internal/transport/http/shared"
)

// EmployeeLookup resolves the employee record belonging to an
// authenticated user, matched by email.
type EmployeeLookup interface {
	FindByEmail(ctx context.Context, email string) (employee.Employee, error)
}

type Handler struct {
	Payroll   *payroll.Service
	Employees EmployeeLookup
}

func NewHandler(svc *payroll.Service, employees EmployeeLookup) *Handler {
	return &Handler{Payroll: svc, Employees: employees}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payrolls", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCreatePayroll)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermReadPayroll)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermReadPayroll)).Get("/my", h.handleListMine)
		r.With(middleware.RequirePermission(auth.PermReadPayroll)).Get("/export/bank-transfer", h.handleBankTransfer)
		r.With(middleware.RequirePermission(auth.PermReadPayroll)).Get("/ytd/{employeeID}", h.handleYTD)
		r.With(middleware.RequirePermission(auth.PermReadPayroll)).Get("/{payrollID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermUpdatePayroll)).Put("/{payrollID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermApprovePayroll)).Post("/{payrollID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermApprovePayroll)).Post("/{payrollID}/reject", h.handleReject)
		r.With(middleware.RequirePermission(auth.PermApprovePayroll)).Post("/{payrollID}/pay", h.handleMarkPaid)
		r.With(middleware.RequirePermission(auth.PermReadPayroll)).Get("/{payrollID}/payslip", h.handlePayslip)
	})
}

type periodPayload struct {
	Month     int    `json:"month"`
	Year      int    `json:"year"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type createPayload struct {
	EmployeeID string                 `json:"employeeId"`
	Period     periodPayload          `json:"payPeriod"`
	Earnings   payroll.EarningsInput  `json:"earnings"`
	Deductions payroll.DeductionInput `json:"deductions"`
	Notes      string                 `json:"notes"`
}

type updatePayload struct {
	Period     *periodPayload          `json:"payPeriod"`
	Earnings   *payroll.EarningsInput  `json:"earnings"`
	Deductions *payroll.DeductionInput `json:"deductions"`
	Status     *string                 `json:"status"`
	Notes      *string                 `json:"notes"`
}

func requestMeta(r *http.Request) audit.RequestMeta {
	return audit.RequestMeta{IP: shared.ClientIP(r), UserAgent: r.UserAgent()}
}

func (p periodPayload) toInput(v *shared.Validator) payroll.PeriodInput {
	input := payroll.PeriodInput{Month: p.Month, Year: p.Year}
	v.IntRange("payPeriod.month", p.Month, 1, 12, "month must be between 1 and 12")
	if p.StartDate != "" {
		if t, ok := v.Date("payPeriod.startDate", p.StartDate); ok {
			input.StartDate = t
		}
	}
	if p.EndDate != "" {
		if t, ok := v.Date("payPeriod.endDate", p.EndDate); ok {
			input.EndDate = t
		}
	}
	return input
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())

	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := &shared.Validator{}
	v.Required("employeeId", payload.EmployeeID, "employee is required")
	v.Positive("earnings.baseSalary", payload.Earnings.BaseSalary, "base salary must be positive")
	period := payload.Period.toInput(v)
	if v.Reject(w, reqID) {
		return
	}

	rec, err := h.Payroll.Create(r.Context(), actor.ID, requestMeta(r), payroll.CreateInput{
		EmployeeID: payload.EmployeeID,
		Period:     period,
		Earnings:   payload.Earnings,
		Deductions: payload.Deductions,
		Notes:      payload.Notes,
	})
	if err != nil {
		writePayrollError(w, reqID, err, "payroll_create_failed", "failed to create payroll")
		return
	}
	api.Created(w, rec, reqID)
}

func parseFilter(r *http.Request) payroll.Filter {
	filter := payroll.Filter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Status:     r.URL.Query().Get("status"),
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("month")); err == nil {
		filter.Month = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil {
		filter.Year = v
	}
	return filter
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 20, 100)

	records, total, err := h.Payroll.List(r.Context(), parseFilter(r), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_list_failed", "failed to list payrolls", reqID)
		return
	}
	api.Success(w, map[string]any{
		"payrolls":   records,
		"pagination": shared.PageMeta{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, reqID)
}

// handleListMine scopes the listing to the payrolls of the employee
// record matching the caller's email.
func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())
	page := shared.ParsePagination(r, 20, 100)

	emp, err := h.Employees.FindByEmail(r.Context(), actor.Email)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			api.Success(w, map[string]any{
				"payrolls":   []payroll.Record{},
				"pagination": shared.PageMeta{Limit: page.Limit, Offset: page.Offset},
			}, reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "payroll_list_failed", "failed to list payrolls", reqID)
		return
	}

	filter := parseFilter(r)
	filter.EmployeeID = emp.ID
	records, total, err := h.Payroll.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_list_failed", "failed to list payrolls", reqID)
		return
	}
	api.Success(w, map[string]any{
		"payrolls":   records,
		"pagination": shared.PageMeta{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	rec, err := h.Payroll.Get(r.Context(), chi.URLParam(r, "payrollID"))
	if err != nil {
		writePayrollError(w, reqID, err, "payroll_get_failed", "failed to load payroll")
		return
	}
	api.Success(w, rec, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())

	var payload updatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	input := payroll.UpdateInput{
		Earnings:   payload.Earnings,
		Deductions: payload.Deductions,
		Status:     payload.Status,
		Notes:      payload.Notes,
	}
	if payload.Period != nil {
		v := &shared.Validator{}
		period := payload.Period.toInput(v)
		if v.Reject(w, reqID) {
			return
		}
		input.Period = &period
	}

	rec, err := h.Payroll.Update(r.Context(), actor.ID, requestMeta(r), chi.URLParam(r, "payrollID"), input)
	if err != nil {
		writePayrollError(w, reqID, err, "payroll_update_failed", "failed to update payroll")
		return
	}
	api.Success(w, rec, reqID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.Payroll.Approve)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.Payroll.Reject)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, fn func(context.Context, string, audit.RequestMeta, string, string) (payroll.Record, error)) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())

	var payload struct {
		Notes string `json:"notes"`
	}
	if r.Body != nil {
		// Empty or absent bodies are fine for approvals.
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	rec, err := fn(r.Context(), actor.ID, requestMeta(r), chi.URLParam(r, "payrollID"), payload.Notes)
	if err != nil {
		writePayrollError(w, reqID, err, "payroll_transition_failed", "failed to update payroll status")
		return
	}
	api.Success(w, rec, reqID)
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())

	rec, err := h.Payroll.MarkPaid(r.Context(), actor.ID, requestMeta(r), chi.URLParam(r, "payrollID"))
	if err != nil {
		writePayrollError(w, reqID, err, "payroll_pay_failed", "failed to mark payroll as paid")
		return
	}
	api.Success(w, rec, reqID)
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor := middleware.Actor(r.Context())

	pdfBytes, rec, err := h.Payroll.GeneratePayslip(r.Context(), actor.ID, requestMeta(r), chi.URLParam(r, "payrollID"))
	if err != nil {
		writePayrollError(w, reqID, err, "payslip_failed", "failed to generate payslip")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%d-%d-%s.pdf", rec.Period.Year, rec.Period.Month, rec.EmployeeID))
	if _, err := w.Write(pdfBytes); err != nil {
		slog.Warn("payslip write failed", "err", err)
	}
}

func (h *Handler) handleBankTransfer(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	month, errM := strconv.Atoi(r.URL.Query().Get("month"))
	year, errY := strconv.Atoi(r.URL.Query().Get("year"))
	if errM != nil || errY != nil {
		api.Fail(w, http.StatusBadRequest, "validation_error", "month and year are required", reqID)
		return
	}

	csvBytes, err := h.Payroll.BankTransferCSV(r.Context(), month, year)
	if err != nil {
		writePayrollError(w, reqID, err, "export_failed", "failed to export bank transfer file")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bank-transfer-%d-%02d.csv", year, month))
	if _, err := w.Write(csvBytes); err != nil {
		slog.Warn("bank transfer write failed", "err", err)
	}
}

func (h *Handler) handleYTD(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "validation_error", "invalid year", reqID)
			return
		}
		year = v
	}

	totals, err := h.Payroll.YTD(r.Context(), chi.URLParam(r, "employeeID"), year)
	if err != nil {
		writePayrollError(w, reqID, err, "ytd_failed", "failed to compute year-to-date totals")
		return
	}
	api.Success(w, map[string]any{"year": year, "totals": totals}, reqID)
}

func writePayrollError(w http.ResponseWriter, reqID string, err error, code, fallback string) {
	switch {
	case errors.Is(err, payroll.ErrInvalidInput):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
	case errors.Is(err, payroll.ErrPayrollNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "payroll not found", reqID)
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
	case errors.Is(err, payroll.ErrEmployeeInactive):
		api.Fail(w, http.StatusBadRequest, "validation_error", "employee is not active", reqID)
	case errors.Is(err, payroll.ErrPayrollExists):
		api.Fail(w, http.StatusConflict, "duplicate_resource", "payroll already exists for this employee and period", reqID)
	case errors.Is(err, payroll.ErrPayrollLocked),
		errors.Is(err, payroll.ErrNotPending),
		errors.Is(err, payroll.ErrNotApproved):
		api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, fallback, reqID)
	}
}
