package telegram

import (
	"fmt"
	"strings"

	"github.com/tillpoint/pos-backend/internal/shifts"
	"github.com/tillpoint/pos-backend/pkg/enums"
)

// FormatShiftReport renders the fixed Markdown payload for the end-of-shift
// message. The structure is byte-stable; downstream chat rendering depends on
// the tree glyphs and bolding staying exactly as they are.
func FormatShiftReport(report *shifts.Report) string {
	var b strings.Builder

	duration := report.EndTime.Sub(report.StartTime)
	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60

	fmt.Fprintf(&b, "*📊 Shift report — %s*\n", report.CashierName)
	fmt.Fprintf(&b, "📅 %s\n", report.StartTime.Format("02.01.2006"))
	fmt.Fprintf(&b, "⏱ Duration: %dh %dm\n", hours, minutes)
	b.WriteString("\n")

	fmt.Fprintf(&b, "💰 Revenue: %s\n", report.TotalRevenue.StringFixed(2))
	fmt.Fprintf(&b, "├ 💵 Cash: %s\n", report.CashRevenue.StringFixed(2))
	fmt.Fprintf(&b, "└ 💳 Card: %s\n", report.CardRevenue.StringFixed(2))
	fmt.Fprintf(&b, "↩️ Returns: %s\n", report.ReturnsTotal.StringFixed(2))
	fmt.Fprintf(&b, "├ 💵 Cash: %s\n", report.CashReturns.StringFixed(2))
	fmt.Fprintf(&b, "└ 💳 Card: %s\n", report.CardReturns.StringFixed(2))
	fmt.Fprintf(&b, "🗑 Write-offs: %s\n", report.WriteOffsTotal.StringFixed(2))
	fmt.Fprintf(&b, "*💼 Session revenue: %s*\n", report.SessionRevenue.StringFixed(2))
	b.WriteString("\n")

	fmt.Fprintf(&b, "🛒 Items sold: %d\n", report.TotalItems)
	fmt.Fprintf(&b, "🧾 Sales: %d\n", report.SaleCount)

	if len(report.Sales) > 0 {
		b.WriteString("\n")
		for i, sale := range report.Sales {
			fmt.Fprintf(&b, "%d. %s %s %s\n",
				i+1,
				sale.SoldAt.Format("15:04"),
				methodGlyph(sale.PaymentMethod),
				sale.Total.StringFixed(2),
			)
		}
	}

	return b.String()
}

func methodGlyph(method enums.PaymentMethod) string {
	if method == enums.PaymentMethodCard {
		return "💳"
	}
	return "💵"
}
