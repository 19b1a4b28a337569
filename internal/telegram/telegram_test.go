package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/pos-backend/internal/shifts"
	"github.com/tillpoint/pos-backend/pkg/db/models"
	"github.com/tillpoint/pos-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/pos-backend/pkg/errors"
)

func sampleReport() *shifts.Report {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &shifts.Report{
		StartTime:   start,
		EndTime:     start.Add(8*time.Hour + 30*time.Minute),
		CashierName: "Dana",
		Sales: []models.Sale{
			{
				ID:            uuid.New(),
				PaymentMethod: enums.PaymentMethodCash,
				Total:         decimal.RequireFromString("200"),
				SoldAt:        start.Add(65 * time.Minute),
			},
			{
				ID:            uuid.New(),
				PaymentMethod: enums.PaymentMethodCard,
				Total:         decimal.RequireFromString("50"),
				SoldAt:        start.Add(3 * time.Hour),
			},
		},
		TotalRevenue:   decimal.RequireFromString("200"),
		TotalItems:     2,
		CashRevenue:    decimal.RequireFromString("200"),
		CardRevenue:    decimal.Zero,
		ReturnsTotal:   decimal.RequireFromString("50"),
		CashReturns:    decimal.Zero,
		CardReturns:    decimal.RequireFromString("50"),
		WriteOffsTotal: decimal.RequireFromString("30"),
		SessionRevenue: decimal.RequireFromString("170"),
		SaleCount:      2,
	}
}

func TestFormatShiftReport(t *testing.T) {
	want := "*📊 Shift report — Dana*\n" +
		"📅 01.03.2026\n" +
		"⏱ Duration: 8h 30m\n" +
		"\n" +
		"💰 Revenue: 200.00\n" +
		"├ 💵 Cash: 200.00\n" +
		"└ 💳 Card: 0.00\n" +
		"↩️ Returns: 50.00\n" +
		"├ 💵 Cash: 0.00\n" +
		"└ 💳 Card: 50.00\n" +
		"🗑 Write-offs: 30.00\n" +
		"*💼 Session revenue: 170.00*\n" +
		"\n" +
		"🛒 Items sold: 2\n" +
		"🧾 Sales: 2\n" +
		"\n" +
		"1. 10:05 💵 200.00\n" +
		"2. 12:00 💳 50.00\n"

	require.Equal(t, want, FormatShiftReport(sampleReport()))
}

func TestFormatShiftReportIsStable(t *testing.T) {
	report := sampleReport()
	require.Equal(t, FormatShiftReport(report), FormatShiftReport(report))
}

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, time.Second)
	require.NoError(t, err)

	err = client.SendMessage(context.Background(), "123:abc", "-100200", "*hello*")
	require.NoError(t, err)
	require.Equal(t, "/bot123:abc/sendMessage", gotPath)
	require.Equal(t, "-100200", gotBody["chat_id"])
	require.Equal(t, "*hello*", gotBody["text"])
	require.Equal(t, "Markdown", gotBody["parse_mode"])
}

func TestSendMessageFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "body not ok",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			client, err := NewClient(server.URL, time.Second)
			require.NoError(t, err)

			err = client.SendMessage(context.Background(), "123:abc", "-100200", "hello")
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency), "got %v", err)
		})
	}
}

func TestSendMessageHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client, err := NewClient(server.URL, 10*time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = client.SendMessage(ctx, "123:abc", "-100200", "hello")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestSendMessageRequiresCredentials(t *testing.T) {
	client, err := NewClient("https://api.telegram.org", time.Second)
	require.NoError(t, err)

	err = client.SendMessage(context.Background(), "", "-100200", "hello")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = client.SendMessage(context.Background(), "123:abc", "", "hello")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
