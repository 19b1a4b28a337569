package shifts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/pos-backend/internal/settings"
	"github.com/tillpoint/pos-backend/pkg/db/models"
	"github.com/tillpoint/pos-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/pos-backend/pkg/errors"
	"github.com/tillpoint/pos-backend/pkg/logger"
)

type salesLedger interface {
	ListSince(ctx context.Context, since time.Time, cashier string) ([]models.Sale, error)
}

// Report is the derived shift summary. It is a pure projection of the ledger
// and write-off log; it is never persisted.
type Report struct {
	StartTime      time.Time
	EndTime        time.Time
	CashierName    string
	Sales          []models.Sale
	TotalRevenue   decimal.Decimal
	TotalItems     int
	CashRevenue    decimal.Decimal
	CardRevenue    decimal.Decimal
	ReturnsTotal   decimal.Decimal
	CashReturns    decimal.Decimal
	CardReturns    decimal.Decimal
	WriteOffsTotal decimal.Decimal
	SessionRevenue decimal.Decimal
	SaleCount      int
}

// SessionUser is the operator snapshot stored while a shift is open.
type SessionUser struct {
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName"`
	Role        enums.Role `json:"role"`
}

// Session describes the register session state read back from settings.
type Session struct {
	Active    bool
	StartedAt time.Time
	User      SessionUser
}

// Service aggregates the shift view: write-offs, the session lifecycle and the
// end-of-shift report.
type Service interface {
	RecordWriteOff(ctx context.Context, amount decimal.Decimal, note *string) (*models.WriteOff, error)
	ListWriteOffs(ctx context.Context, since time.Time) ([]models.WriteOff, error)
	BuildReport(ctx context.Context, cashierName string, since, now time.Time) (*Report, error)
	OpenShift(ctx context.Context, user SessionUser) (*Session, error)
	CloseShift(ctx context.Context) error
	CurrentShift(ctx context.Context) (*Session, error)
}

type service struct {
	writeOffs WriteOffRepository
	ledger    salesLedger
	store     settings.Repository
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the shift aggregator with the provided stack.
func NewService(writeOffs WriteOffRepository, ledger salesLedger, store settings.Repository, logg *logger.Logger) (Service, error) {
	if writeOffs == nil {
		return nil, fmt.Errorf("write-off repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("sales ledger required")
	}
	if store == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{
		writeOffs: writeOffs,
		ledger:    ledger,
		store:     store,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) RecordWriteOff(ctx context.Context, amount decimal.Decimal, note *string) (*models.WriteOff, error) {
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "write-off amount must be positive")
	}

	writeOff := &models.WriteOff{
		ID:     uuid.New(),
		Amount: amount,
		Note:   note,
	}
	if err := s.writeOffs.Create(ctx, writeOff); err != nil {
		return nil, err
	}
	return writeOff, nil
}

func (s *service) ListWriteOffs(ctx context.Context, since time.Time) ([]models.WriteOff, error) {
	return s.writeOffs.ListSince(ctx, since)
}

// BuildReport projects the ledger and write-off log onto a shift summary.
// Returned sales are reported separately and never subtracted from revenue;
// write-offs are.
func (s *service) BuildReport(ctx context.Context, cashierName string, since, now time.Time) (*Report, error) {
	sales, err := s.ledger.ListSince(ctx, since, cashierName)
	if err != nil {
		return nil, err
	}
	writeOffs, err := s.writeOffs.ListSince(ctx, since)
	if err != nil {
		return nil, err
	}

	report := &Report{
		StartTime:   since,
		EndTime:     now,
		CashierName: cashierName,
		Sales:       sales,
		SaleCount:   len(sales),
	}

	for _, sale := range sales {
		if sale.Returned {
			report.ReturnsTotal = report.ReturnsTotal.Add(sale.Total)
			switch sale.PaymentMethod {
			case enums.PaymentMethodCash:
				report.CashReturns = report.CashReturns.Add(sale.Total)
			case enums.PaymentMethodCard:
				report.CardReturns = report.CardReturns.Add(sale.Total)
			}
			continue
		}

		report.TotalRevenue = report.TotalRevenue.Add(sale.Total)
		switch sale.PaymentMethod {
		case enums.PaymentMethodCash:
			report.CashRevenue = report.CashRevenue.Add(sale.Total)
		case enums.PaymentMethodCard:
			report.CardRevenue = report.CardRevenue.Add(sale.Total)
		}
		for _, item := range sale.Items {
			report.TotalItems += item.Quantity
		}
	}

	for _, writeOff := range writeOffs {
		report.WriteOffsTotal = report.WriteOffsTotal.Add(writeOff.Amount)
	}
	report.SessionRevenue = report.TotalRevenue.Sub(report.WriteOffsTotal)

	return report, nil
}

// OpenShift stores the session flag, start timestamp and operator snapshot.
func (s *service) OpenShift(ctx context.Context, user SessionUser) (*Session, error) {
	if user.Username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session user is required")
	}

	current, err := s.CurrentShift(ctx)
	if err != nil {
		return nil, err
	}
	if current.Active {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "shift already open")
	}

	startedAt := s.now()
	if err := settings.PutJSON(ctx, s.store, settings.KeySessionActive, true); err != nil {
		return nil, err
	}
	if err := settings.PutJSON(ctx, s.store, settings.KeySessionStartedAt, startedAt.Format(time.RFC3339Nano)); err != nil {
		return nil, err
	}
	if err := settings.PutJSON(ctx, s.store, settings.KeySessionUser, user); err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUsername(ctx, user.Username), "shift opened")
	}
	return &Session{Active: true, StartedAt: startedAt, User: user}, nil
}

// CloseShift clears the stored session state.
func (s *service) CloseShift(ctx context.Context) error {
	current, err := s.CurrentShift(ctx)
	if err != nil {
		return err
	}
	if !current.Active {
		return pkgerrors.New(pkgerrors.CodeConflict, "no open shift")
	}

	for _, key := range []string{settings.KeySessionActive, settings.KeySessionStartedAt, settings.KeySessionUser} {
		if err := s.store.Delete(ctx, key); err != nil {
			return err
		}
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUsername(ctx, current.User.Username), "shift closed")
	}
	return nil
}

// CurrentShift reads the session state back. Malformed blobs read as absent,
// so a corrupted settings row degrades to "no open shift" instead of failing.
func (s *service) CurrentShift(ctx context.Context) (*Session, error) {
	active, err := settings.GetBool(ctx, s.store, settings.KeySessionActive)
	if err != nil {
		return nil, err
	}
	if !active {
		return &Session{}, nil
	}

	session := &Session{Active: true}

	stamp, err := settings.GetString(ctx, s.store, settings.KeySessionStartedAt)
	if err != nil {
		return nil, err
	}
	if stamp != "" {
		if parsed, parseErr := time.Parse(time.RFC3339Nano, stamp); parseErr == nil {
			session.StartedAt = parsed
		}
	}

	raw, err := s.store.Get(ctx, settings.KeySessionUser)
	if err != nil {
		return nil, err
	}
	if raw != nil {
		var user SessionUser
		if json.Unmarshal(raw, &user) == nil {
			session.User = user
		}
	}

	return session, nil
}
