package payroll

import (
	"context"
	"fmt"
	"time"

	"hrpay/internal/domain/audit"
)

// Service wires the calculator, the store contract and the audit
// recorder into the payroll use-cases. Authorization happens in the
// transport layer before any of these run; each method receives the
// acting user's id for attribution only.
type Service struct {
	store StoreAPI
	audit audit.Recorder
	rates Rates
}

func NewService(store StoreAPI, recorder audit.Recorder, rates Rates) *Service {
	return &Service{store: store, audit: recorder, rates: rates}
}

type PeriodInput struct {
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type CreateInput struct {
	EmployeeID string
	Period     PeriodInput
	Earnings   EarningsInput
	Deductions DeductionInput
	Notes      string
}

type UpdateInput struct {
	Period     *PeriodInput
	Earnings   *EarningsInput
	Deductions *DeductionInput
	Status     *string
	Notes      *string
}

// Create computes and persists a payroll record for one employee and
// period. Structural validation happens at the transport boundary; the
// business rules are re-checked here because they are this domain's
// invariants, not payload shape.
func (s *Service) Create(ctx context.Context, actorID string, meta audit.RequestMeta, input CreateInput) (Record, error) {
	if err := validatePeriod(input.Period.Month, input.Period.Year); err != nil {
		return Record{}, err
	}
	if input.Earnings.BaseSalary <= 0 {
		return Record{}, fmt.Errorf("%w: base salary must be positive", ErrInvalidInput)
	}

	profile, err := s.store.EmployeeProfile(ctx, input.EmployeeID)
	if err != nil {
		return Record{}, err
	}
	if !profile.IsActive {
		return Record{}, ErrEmployeeInactive
	}

	period := PayPeriod{
		Month:     input.Period.Month,
		Year:      input.Period.Year,
		StartDate: input.Period.StartDate,
		EndDate:   input.Period.EndDate,
	}
	if period.StartDate.IsZero() || period.EndDate.IsZero() {
		period.StartDate, period.EndDate = PeriodDates(period.Month, period.Year, profile.PayFrequency)
	}
	if period.EndDate.Before(period.StartDate) {
		return Record{}, fmt.Errorf("%w: period end before start", ErrInvalidInput)
	}

	rec := BuildRecord(s.rates, profile, period, input.Earnings, input.Deductions)
	rec.Notes = input.Notes

	created, err := s.store.Insert(ctx, rec)
	if err != nil {
		return Record{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     "payroll.create",
		Resource:   "payroll",
		ResourceID: created.ID,
		Details: map[string]any{
			"employee":  profile.Code,
			"period":    fmt.Sprintf("%d/%d", period.Month, period.Year),
			"netSalary": created.NetSalary,
		},
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	})
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Record, int, error) {
	return s.store.List(ctx, filter, limit, offset)
}

// Update recomputes the record from the changed inputs. The store
// refuses the write when the record is already approved or paid; the
// status field only moves between Draft and Pending here, every other
// transition has its own operation.
func (s *Service) Update(ctx context.Context, actorID string, meta audit.RequestMeta, id string, input UpdateInput) (Record, error) {
	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if Locked(rec.Status) {
		return Record{}, ErrPayrollLocked
	}

	profile, err := s.store.EmployeeProfile(ctx, rec.EmployeeID)
	if err != nil {
		return Record{}, err
	}

	if input.Period != nil {
		if err := validatePeriod(input.Period.Month, input.Period.Year); err != nil {
			return Record{}, err
		}
		rec.Period.Month = input.Period.Month
		rec.Period.Year = input.Period.Year
		if !input.Period.StartDate.IsZero() {
			rec.Period.StartDate = input.Period.StartDate
		}
		if !input.Period.EndDate.IsZero() {
			rec.Period.EndDate = input.Period.EndDate
		}
	}

	if input.Earnings != nil {
		if input.Earnings.BaseSalary <= 0 {
			return Record{}, fmt.Errorf("%w: base salary must be positive", ErrInvalidInput)
		}
		rec.Earnings = Earnings{
			BaseSalary: input.Earnings.BaseSalary,
			Overtime:   input.Earnings.Overtime,
			Bonus:      input.Earnings.Bonus,
			Commission: input.Earnings.Commission,
			Allowances: input.Earnings.Allowances,
		}
	}
	rec.Earnings.TotalEarnings = rec.Earnings.BaseSalary + rec.Earnings.Overtime +
		rec.Earnings.Bonus + rec.Earnings.Commission + rec.Earnings.Allowances

	if input.Deductions != nil {
		rec.Deductions = ResolveDeductions(s.rates, profile, rec.Earnings.BaseSalary, *input.Deductions)
	} else {
		rec.Deductions.TotalDeductions = rec.Deductions.Tax + rec.Deductions.SocialSecurity +
			rec.Deductions.HealthInsurance + rec.Deductions.RetirementContribution + rec.Deductions.OtherDeductions
	}
	rec.NetSalary = rec.Earnings.TotalEarnings - rec.Deductions.TotalDeductions

	if input.Status != nil {
		if *input.Status != StatusDraft && *input.Status != StatusPending {
			return Record{}, fmt.Errorf("%w: status may only be set to Draft or Pending", ErrInvalidInput)
		}
		rec.Status = *input.Status
	}
	if input.Notes != nil {
		rec.Notes = *input.Notes
	}

	updated, err := s.store.Update(ctx, rec)
	if err != nil {
		return Record{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     "payroll.update",
		Resource:   "payroll",
		ResourceID: updated.ID,
		Details:    map[string]any{"netSalary": updated.NetSalary, "status": updated.Status},
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})
	return updated, nil
}

// Approve moves a Pending record to Approved, freezing its monetary
// fields. Re-invoking on any other status fails without side effects.
func (s *Service) Approve(ctx context.Context, actorID string, meta audit.RequestMeta, id, notes string) (Record, error) {
	rec, err := s.store.Approve(ctx, id, actorID, notes, time.Now())
	if err != nil {
		return Record{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     "payroll.approve",
		Resource:   "payroll",
		ResourceID: rec.ID,
		Details:    map[string]any{"netSalary": rec.NetSalary},
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})
	return rec, nil
}

func (s *Service) Reject(ctx context.Context, actorID string, meta audit.RequestMeta, id, notes string) (Record, error) {
	rec, err := s.store.Reject(ctx, id, notes)
	if err != nil {
		return Record{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     "payroll.reject",
		Resource:   "payroll",
		ResourceID: rec.ID,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})
	return rec, nil
}

// MarkPaid records the external payment confirmation. Only an Approved
// record can become Paid; there is no shortcut from Pending.
func (s *Service) MarkPaid(ctx context.Context, actorID string, meta audit.RequestMeta, id string) (Record, error) {
	rec, err := s.store.MarkPaid(ctx, id, time.Now())
	if err != nil {
		return Record{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     "payroll.pay",
		Resource:   "payroll",
		ResourceID: rec.ID,
		Details:    map[string]any{"netSalary": rec.NetSalary},
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})
	return rec, nil
}

// GeneratePayslip renders the payslip PDF and marks the record. The
// returned record reflects the payslipGenerated flag.
func (s *Service) GeneratePayslip(ctx context.Context, actorID string, meta audit.RequestMeta, id string) ([]byte, Record, error) {
	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, Record{}, err
	}
	profile, err := s.store.EmployeeProfile(ctx, rec.EmployeeID)
	if err != nil {
		return nil, Record{}, err
	}

	pdfBytes, err := RenderPayslipPDF(rec, profile)
	if err != nil {
		return nil, Record{}, err
	}

	if err := s.store.SetPayslipGenerated(ctx, rec.ID); err != nil {
		return nil, Record{}, err
	}
	rec.PayslipGenerated = true

	s.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     "payroll.payslip.generate",
		Resource:   "payroll",
		ResourceID: rec.ID,
		Details:    map[string]any{"employee": profile.Code},
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})
	return pdfBytes, rec, nil
}

func (s *Service) YTD(ctx context.Context, employeeID string, year int) (YTDTotals, error) {
	if _, err := s.store.EmployeeProfile(ctx, employeeID); err != nil {
		return YTDTotals{}, err
	}
	return s.store.YTDTotals(ctx, employeeID, year)
}

// BankTransferCSV exports every Approved record of the period as a CSV
// for the bank. An empty period yields ErrPayrollNotFound so callers
// can distinguish "nothing to pay" from an empty file.
func (s *Service) BankTransferCSV(ctx context.Context, month, year int) ([]byte, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	rows, err := s.store.ApprovedForPeriod(ctx, month, year)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrPayrollNotFound
	}
	return renderBankCSV(rows)
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	}
	if year < 2000 || year > time.Now().Year()+1 {
		return fmt.Errorf("%w: year out of range", ErrInvalidInput)
	}
	return nil
}
