package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatTradeOrg renders a Record as an Org-mode block for a trading journal.
// Structured facts go in the PROPERTIES drawer; the Review heading is left for notes.
func FormatTradeOrg(r Record) string {
	heading := fmt.Sprintf("** %s %s %s (%s)", r.Strategy, strings.ToUpper(string(r.Side)), r.Symbol, shortID(r.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %s\n", r.ID))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", r.Timestamp.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", r.Symbol))
	b.WriteString(fmt.Sprintf(":STRATEGY: %s\n", r.Strategy))
	b.WriteString(fmt.Sprintf(":SIDE: %s\n", r.Side))
	b.WriteString(fmt.Sprintf(":PRICE: %.4f\n", r.Price))
	b.WriteString(fmt.Sprintf(":AMOUNT: %.8f\n", r.Amount))
	b.WriteString(fmt.Sprintf(":NOTIONAL: %.2f\n", r.Price*r.Amount))
	b.WriteString(fmt.Sprintf(":ORDER_ID: %s\n", r.OrderID))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []Record) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
