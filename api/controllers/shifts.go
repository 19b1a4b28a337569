package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillpoint/pos-backend/api/middleware"
	"github.com/tillpoint/pos-backend/api/responses"
	"github.com/tillpoint/pos-backend/api/validators"
	"github.com/tillpoint/pos-backend/internal/settings"
	"github.com/tillpoint/pos-backend/internal/shifts"
	"github.com/tillpoint/pos-backend/internal/telegram"
	"github.com/tillpoint/pos-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/pos-backend/pkg/errors"
	"github.com/tillpoint/pos-backend/pkg/logger"
	"github.com/tillpoint/pos-backend/pkg/metrics"
)

func ShiftOpen(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, err := enums.ParseRole(middleware.RoleFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "unknown operator role"))
			return
		}

		session, err := svc.OpenShift(r.Context(), shifts.SessionUser{
			Username:    middleware.UsernameFromContext(r.Context()),
			DisplayName: middleware.DisplayNameFromContext(r.Context()),
			Role:        role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

func ShiftClose(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CloseShift(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "closed"})
	}
}

func ShiftCurrent(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.CurrentShift(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// ShiftReport builds the per-cashier report for the open session window. The
// session start is the default window bound; a since query overrides it.
func ShiftReport(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := buildWindowedReport(r, svc, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ShiftStats is the all-cashier variant of the report.
func ShiftStats(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := buildWindowedReport(r, svc, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ShiftReportSend formats the report and hands it to the notification gateway.
// Delivery failures surface as recoverable errors; the ledger is untouched.
func ShiftReportSend(svc shifts.Service, store settings.Repository, client *telegram.Client, m *metrics.TerminalMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "telegram client unavailable"))
			return
		}

		report, err := buildWindowedReport(r, svc, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := settings.GetString(r.Context(), store, settings.KeyTelegramBotToken)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		chatID, err := settings.GetString(r.Context(), store, settings.KeyTelegramChatID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if token == "" || chatID == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "telegram bot token and chat id are not configured"))
			return
		}

		m.IncReportSend("telegram")
		if err := client.SendMessage(r.Context(), token, chatID, telegram.FormatShiftReport(report)); err != nil {
			m.IncSendFailure("telegram")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "sent"})
	}
}

type writeOffRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Note   *string         `json:"note,omitempty"`
}

func WriteOffCreate(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload writeOffRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeOff, err := svc.RecordWriteOff(r.Context(), payload.Amount, payload.Note)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, writeOff)
	}
}

func WriteOffList(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		since, err := sinceFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeOffs, err := svc.ListWriteOffs(r.Context(), since)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, writeOffs)
	}
}

func buildWindowedReport(r *http.Request, svc shifts.Service, allCashiers bool) (*shifts.Report, error) {
	since, err := sinceFromQuery(r)
	if err != nil {
		return nil, err
	}

	session, err := svc.CurrentShift(r.Context())
	if err != nil {
		return nil, err
	}
	if since.IsZero() && session.Active {
		since = session.StartedAt
	}

	cashier := ""
	if !allCashiers {
		cashier = r.URL.Query().Get("cashier")
		if cashier == "" {
			cashier = middleware.DisplayNameFromContext(r.Context())
		}
	}

	return svc.BuildReport(r.Context(), cashier, since, time.Now())
}
