package payroll

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"hrpay/internal/domain/audit"
)

// fakeStore keeps records in memory and enforces the same uniqueness
// and compare-and-set rules the SQL store does.
type fakeStore struct {
	profiles map[string]EmployeeProfile
	records  map[string]Record
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: map[string]EmployeeProfile{},
		records:  map[string]Record{},
	}
}

func (f *fakeStore) EmployeeProfile(_ context.Context, employeeID string) (EmployeeProfile, error) {
	p, ok := f.profiles[employeeID]
	if !ok {
		return EmployeeProfile{}, ErrEmployeeNotFound
	}
	return p, nil
}

func (f *fakeStore) Insert(_ context.Context, rec Record) (Record, error) {
	for _, existing := range f.records {
		if existing.EmployeeID == rec.EmployeeID &&
			existing.Period.Month == rec.Period.Month &&
			existing.Period.Year == rec.Period.Year {
			return Record{}, ErrPayrollExists
		}
	}
	f.nextID++
	rec.ID = "pr-" + strconv.Itoa(f.nextID)
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return Record{}, ErrPayrollNotFound
	}
	return rec, nil
}

func (f *fakeStore) List(_ context.Context, filter Filter, limit, offset int) ([]Record, int, error) {
	var out []Record
	for _, rec := range f.records {
		if filter.EmployeeID != "" && rec.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		out = append(out, rec)
	}
	return out, len(out), nil
}

func (f *fakeStore) Update(_ context.Context, rec Record) (Record, error) {
	existing, ok := f.records[rec.ID]
	if !ok {
		return Record{}, ErrPayrollNotFound
	}
	if Locked(existing.Status) {
		return Record{}, ErrPayrollLocked
	}
	rec.UpdatedAt = time.Now()
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeStore) Approve(_ context.Context, id, approverID, notes string, at time.Time) (Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return Record{}, ErrPayrollNotFound
	}
	if rec.Status != StatusPending {
		return Record{}, ErrNotPending
	}
	rec.Status = StatusApproved
	rec.ApprovedBy = approverID
	rec.ApprovedAt = &at
	if notes != "" {
		rec.Notes = notes
	}
	f.records[id] = rec
	return rec, nil
}

func (f *fakeStore) Reject(_ context.Context, id, notes string) (Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return Record{}, ErrPayrollNotFound
	}
	if rec.Status != StatusPending {
		return Record{}, ErrNotPending
	}
	rec.Status = StatusRejected
	if notes != "" {
		rec.Notes = notes
	}
	f.records[id] = rec
	return rec, nil
}

func (f *fakeStore) MarkPaid(_ context.Context, id string, at time.Time) (Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return Record{}, ErrPayrollNotFound
	}
	if rec.Status != StatusApproved {
		return Record{}, ErrNotApproved
	}
	rec.Status = StatusPaid
	rec.PaidAt = &at
	f.records[id] = rec
	return rec, nil
}

func (f *fakeStore) SetPayslipGenerated(_ context.Context, id string) error {
	rec, ok := f.records[id]
	if !ok {
		return ErrPayrollNotFound
	}
	rec.PayslipGenerated = true
	f.records[id] = rec
	return nil
}

func (f *fakeStore) YTDTotals(_ context.Context, employeeID string, year int) (YTDTotals, error) {
	var totals YTDTotals
	for _, rec := range f.records {
		if rec.EmployeeID != employeeID || rec.Period.Year != year {
			continue
		}
		if rec.Status != StatusApproved && rec.Status != StatusPaid {
			continue
		}
		totals.Earnings += rec.Earnings.TotalEarnings
		totals.Deductions += rec.Deductions.TotalDeductions
		totals.NetPay += rec.NetSalary
	}
	return totals, nil
}

func (f *fakeStore) ApprovedForPeriod(_ context.Context, month, year int) ([]BankRow, error) {
	var rows []BankRow
	for _, rec := range f.records {
		if rec.Status != StatusApproved || rec.Period.Month != month || rec.Period.Year != year {
			continue
		}
		rows = append(rows, BankRow{EmployeeCode: rec.EmployeeID, NetSalary: rec.NetSalary})
	}
	return rows, nil
}

type fakeRecorder struct {
	entries []audit.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e audit.Entry) {
	f.entries = append(f.entries, e)
}

func (f *fakeRecorder) actions() []string {
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.Action
	}
	return out
}

func newTestService() (*Service, *fakeStore, *fakeRecorder) {
	store := newFakeStore()
	store.profiles["emp-1"] = EmployeeProfile{
		ID:              "emp-1",
		Code:            "EMP0001",
		FirstName:       "Ada",
		LastName:        "Lovelace",
		BaseSalary:      5000,
		Currency:        "USD",
		PayFrequency:    "Monthly",
		HealthInsurance: true,
		RetirementPlan:  true,
		IsActive:        true,
	}
	store.profiles["emp-2"] = EmployeeProfile{
		ID:       "emp-2",
		Code:     "EMP0002",
		IsActive: false,
	}
	recorder := &fakeRecorder{}
	svc := NewService(store, recorder, testRates)
	return svc, store, recorder
}

func createPending(t *testing.T, svc *Service) Record {
	t.Helper()
	rec, err := svc.Create(context.Background(), "actor-1", audit.RequestMeta{}, CreateInput{
		EmployeeID: "emp-1",
		Period:     PeriodInput{Month: 3, Year: 2025},
		Earnings:   EarningsInput{BaseSalary: 5000},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return rec
}

func TestServiceCreate(t *testing.T) {
	svc, _, recorder := newTestService()

	rec := createPending(t, svc)

	if rec.Status != StatusPending {
		t.Fatalf("status = %q, want %q", rec.Status, StatusPending)
	}
	if !almostEqual(rec.NetSalary, 3240) {
		t.Fatalf("net salary = %v, want 3240", rec.NetSalary)
	}
	// Monthly frequency derives a calendar-month period.
	if rec.Period.StartDate.Day() != 1 || rec.Period.EndDate.Day() != 31 {
		t.Fatalf("period = %v..%v, want full March", rec.Period.StartDate, rec.Period.EndDate)
	}
	if got := recorder.actions(); len(got) != 1 || got[0] != "payroll.create" {
		t.Fatalf("audit actions = %v, want [payroll.create]", got)
	}
}

func TestServiceCreateDuplicatePeriod(t *testing.T) {
	svc, _, _ := newTestService()
	createPending(t, svc)

	_, err := svc.Create(context.Background(), "actor-1", audit.RequestMeta{}, CreateInput{
		EmployeeID: "emp-1",
		Period:     PeriodInput{Month: 3, Year: 2025},
		Earnings:   EarningsInput{BaseSalary: 6000},
	})
	if !errors.Is(err, ErrPayrollExists) {
		t.Fatalf("err = %v, want ErrPayrollExists", err)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _, recorder := newTestService()
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateInput
		want  error
	}{
		{
			"month out of range",
			CreateInput{EmployeeID: "emp-1", Period: PeriodInput{Month: 13, Year: 2025}, Earnings: EarningsInput{BaseSalary: 5000}},
			ErrInvalidInput,
		},
		{
			"year before 2000",
			CreateInput{EmployeeID: "emp-1", Period: PeriodInput{Month: 1, Year: 1999}, Earnings: EarningsInput{BaseSalary: 5000}},
			ErrInvalidInput,
		},
		{
			"year too far ahead",
			CreateInput{EmployeeID: "emp-1", Period: PeriodInput{Month: 1, Year: time.Now().Year() + 2}, Earnings: EarningsInput{BaseSalary: 5000}},
			ErrInvalidInput,
		},
		{
			"zero base salary",
			CreateInput{EmployeeID: "emp-1", Period: PeriodInput{Month: 1, Year: 2025}},
			ErrInvalidInput,
		},
		{
			"unknown employee",
			CreateInput{EmployeeID: "ghost", Period: PeriodInput{Month: 1, Year: 2025}, Earnings: EarningsInput{BaseSalary: 5000}},
			ErrEmployeeNotFound,
		},
		{
			"inactive employee",
			CreateInput{EmployeeID: "emp-2", Period: PeriodInput{Month: 1, Year: 2025}, Earnings: EarningsInput{BaseSalary: 5000}},
			ErrEmployeeInactive,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "actor-1", audit.RequestMeta{}, tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if len(recorder.entries) != 0 {
		t.Fatalf("rejected creates must not audit, got %v", recorder.actions())
	}
}

func TestServiceApproveFlow(t *testing.T) {
	svc, _, recorder := newTestService()
	ctx := context.Background()
	rec := createPending(t, svc)

	approved, err := svc.Approve(ctx, "approver-1", audit.RequestMeta{}, rec.ID, "looks right")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != StatusApproved {
		t.Fatalf("status = %q, want Approved", approved.Status)
	}
	if approved.ApprovedBy != "approver-1" || approved.ApprovedAt == nil {
		t.Fatalf("approval metadata missing: %+v", approved)
	}
	if approved.Notes != "looks right" {
		t.Fatalf("notes = %q, want approval notes", approved.Notes)
	}

	// Second approval must fail without side effects.
	before := len(recorder.entries)
	if _, err := svc.Approve(ctx, "approver-2", audit.RequestMeta{}, rec.ID, ""); !errors.Is(err, ErrNotPending) {
		t.Fatalf("second approve err = %v, want ErrNotPending", err)
	}
	if len(recorder.entries) != before {
		t.Fatalf("failed approval must not audit")
	}

	paid, err := svc.MarkPaid(ctx, "finance-1", audit.RequestMeta{}, rec.ID)
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if paid.Status != StatusPaid || paid.PaidAt == nil {
		t.Fatalf("paid record = %+v, want Paid with timestamp", paid)
	}

	wantActions := []string{"payroll.create", "payroll.approve", "payroll.pay"}
	got := recorder.actions()
	if fmt.Sprint(got) != fmt.Sprint(wantActions) {
		t.Fatalf("audit actions = %v, want %v", got, wantActions)
	}
}

func TestServiceRejectRequiresPending(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	rec := createPending(t, svc)

	rejected, err := svc.Reject(ctx, "approver-1", audit.RequestMeta{}, rec.ID, "numbers off")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Fatalf("status = %q, want Rejected", rejected.Status)
	}

	if _, err := svc.Reject(ctx, "approver-1", audit.RequestMeta{}, rec.ID, ""); !errors.Is(err, ErrNotPending) {
		t.Fatalf("second reject err = %v, want ErrNotPending", err)
	}
	if _, err := svc.Approve(ctx, "approver-1", audit.RequestMeta{}, rec.ID, ""); !errors.Is(err, ErrNotPending) {
		t.Fatalf("approve after reject err = %v, want ErrNotPending", err)
	}
}

func TestServiceMarkPaidRequiresApproved(t *testing.T) {
	svc, _, _ := newTestService()
	rec := createPending(t, svc)

	if _, err := svc.MarkPaid(context.Background(), "finance-1", audit.RequestMeta{}, rec.ID); !errors.Is(err, ErrNotApproved) {
		t.Fatalf("err = %v, want ErrNotApproved", err)
	}
}

func TestServiceUpdateLockedRecord(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	rec := createPending(t, svc)

	if _, err := svc.Approve(ctx, "approver-1", audit.RequestMeta{}, rec.ID, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	notes := "late edit"
	if _, err := svc.Update(ctx, "actor-1", audit.RequestMeta{}, rec.ID, UpdateInput{Notes: &notes}); !errors.Is(err, ErrPayrollLocked) {
		t.Fatalf("err = %v, want ErrPayrollLocked", err)
	}
}

func TestServiceUpdateRecomputesTotals(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	rec := createPending(t, svc)

	updated, err := svc.Update(ctx, "actor-1", audit.RequestMeta{}, rec.ID, UpdateInput{
		Earnings: &EarningsInput{BaseSalary: 6000, Bonus: 500},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !almostEqual(updated.Earnings.TotalEarnings, 6500) {
		t.Fatalf("total earnings = %v, want 6500", updated.Earnings.TotalEarnings)
	}
	// Deductions were not resubmitted; totals still reconcile.
	wantNet := updated.Earnings.TotalEarnings - updated.Deductions.TotalDeductions
	if !almostEqual(updated.NetSalary, wantNet) {
		t.Fatalf("net = %v, want %v", updated.NetSalary, wantNet)
	}
}

func TestServiceUpdateStatusRestricted(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	rec := createPending(t, svc)

	draft := StatusDraft
	if _, err := svc.Update(ctx, "actor-1", audit.RequestMeta{}, rec.ID, UpdateInput{Status: &draft}); err != nil {
		t.Fatalf("setting Draft failed: %v", err)
	}

	approved := StatusApproved
	if _, err := svc.Update(ctx, "actor-1", audit.RequestMeta{}, rec.ID, UpdateInput{Status: &approved}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput for direct Approved", err)
	}
}

func TestServiceYTD(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	for month := 1; month <= 3; month++ {
		rec, err := svc.Create(ctx, "actor-1", audit.RequestMeta{}, CreateInput{
			EmployeeID: "emp-1",
			Period:     PeriodInput{Month: month, Year: 2025},
			Earnings:   EarningsInput{BaseSalary: 5000},
		})
		if err != nil {
			t.Fatalf("create month %d failed: %v", month, err)
		}
		if month < 3 {
			if _, err := svc.Approve(ctx, "approver-1", audit.RequestMeta{}, rec.ID, ""); err != nil {
				t.Fatalf("approve month %d failed: %v", month, err)
			}
		}
	}

	totals, err := svc.YTD(ctx, "emp-1", 2025)
	if err != nil {
		t.Fatalf("ytd failed: %v", err)
	}
	// Only the two approved months count; the pending March one does not.
	if !almostEqual(totals.NetPay, 2*3240) {
		t.Fatalf("net pay = %v, want 6480", totals.NetPay)
	}

	if _, err := svc.YTD(ctx, "ghost", 2025); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("err = %v, want ErrEmployeeNotFound", err)
	}
	_ = store
}

func TestServiceBankTransferCSV(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.BankTransferCSV(ctx, 3, 2025); !errors.Is(err, ErrPayrollNotFound) {
		t.Fatalf("empty period err = %v, want ErrPayrollNotFound", err)
	}

	rec := createPending(t, svc)
	if _, err := svc.Approve(ctx, "approver-1", audit.RequestMeta{}, rec.ID, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	out, err := svc.BankTransferCSV(ctx, 3, 2025)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("export produced no bytes")
	}
}

func TestServicePayslipMarksRecord(t *testing.T) {
	svc, store, recorder := newTestService()
	ctx := context.Background()
	rec := createPending(t, svc)

	pdfBytes, updated, err := svc.GeneratePayslip(ctx, "actor-1", audit.RequestMeta{}, rec.ID)
	if err != nil {
		t.Fatalf("payslip failed: %v", err)
	}
	if len(pdfBytes) == 0 {
		t.Fatal("payslip produced no bytes")
	}
	if !updated.PayslipGenerated {
		t.Fatal("payslipGenerated not set on returned record")
	}
	if stored := store.records[rec.ID]; !stored.PayslipGenerated {
		t.Fatal("payslipGenerated not persisted")
	}
	if got := recorder.actions(); got[len(got)-1] != "payroll.payslip.generate" {
		t.Fatalf("audit actions = %v, want payslip generation recorded", got)
	}
}
