package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"daytrader-client/internal/trade"
	"daytrader-client/internal/types"
)

// render prints markdown through glamour. Output falls back to the raw
// markdown when the renderer cannot be built.
func render(w io.Writer, md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(w, out)
			return
		}
	}
	fmt.Fprint(w, md)
}

func optMoney(d *decimal.Decimal) string {
	if d == nil {
		return "N/A"
	}
	return types.FormatMoney(*d)
}

func quoteMarkdown(q types.Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s  %s\n\n", q.Symbol, q.CompanyName)
	b.WriteString("| Price | Change | Open | High | Low | Volume |\n|---|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
		types.FormatMoney(q.Price), q.Change.StringFixed(2), types.FormatMoney(q.Open),
		types.FormatMoney(q.High), types.FormatMoney(q.Low), q.Volume.String())
	return b.String()
}

func holdingsMarkdown(hs []types.Holding) string {
	sort.Slice(hs, func(i, j int) bool { return hs[i].HoldingID < hs[j].HoldingID })
	var b strings.Builder
	b.WriteString("## Holdings\n\n")
	if len(hs) == 0 {
		b.WriteString("No holdings.\n")
		return b.String()
	}
	b.WriteString("| ID | Symbol | Quantity | Purchase price | Current price | Market value | Gain |\n|---|---|---|---|---|---|---|\n")
	for _, h := range hs {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s |\n",
			h.HoldingID, h.Symbol, h.Quantity.String(), types.FormatMoney(h.PurchasePrice),
			optMoney(h.CurrentPrice), optMoney(h.MarketValue), optMoney(h.Gain))
	}
	return b.String()
}

// ordersMarkdown lists orders newest first; highlight marks one order id.
func ordersMarkdown(orders []types.Order, highlight int64) string {
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderID > orders[j].OrderID })
	var b strings.Builder
	b.WriteString("## Orders\n\n")
	if len(orders) == 0 {
		b.WriteString("No orders.\n")
		return b.String()
	}
	b.WriteString("| ID | Type | Symbol | Quantity | Price | Fee | Total | Status |\n|---|---|---|---|---|---|---|---|\n")
	for _, o := range orders {
		id := fmt.Sprintf("%d", o.OrderID)
		if o.OrderID == highlight {
			id = "**" + id + "**"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			id, o.OrderType, o.Symbol, o.Quantity.String(), types.FormatMoney(o.Price),
			types.FormatMoney(o.OrderFee), types.FormatMoney(o.Total()), o.OrderStatus)
	}
	return b.String()
}

func accountMarkdown(s types.AccountSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Account %d\n\n", s.AccountID)
	b.WriteString("| Cash | Holdings value | Total value | Gain | Gain % | Holdings |\n|---|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s | %s | %s | %.2f%% | %d |\n",
		types.FormatMoney(s.CashBalance), types.FormatMoney(s.HoldingsValue), types.FormatMoney(s.TotalValue),
		types.FormatMoney(s.TotalGain), s.TotalGainPercent, s.HoldingsCount)
	return b.String()
}

func estimateMarkdown(snap trade.Snapshot) string {
	var b strings.Builder
	in := snap.Intent
	if in.Action == types.OrderTypeSell {
		h := snap.Holding.Value
		fmt.Fprintf(&b, "## Sell holding %d (%s)\n\n", h.HoldingID, h.Symbol)
	} else {
		fmt.Fprintf(&b, "## Buy %d %s\n\n", in.Quantity, in.Symbol)
	}
	if snap.Estimate == nil {
		b.WriteString("Estimated total: N/A\n")
		return b.String()
	}
	e := snap.Estimate
	label := "Estimated total cost"
	if e.Action == types.OrderTypeSell {
		label = "Estimated proceeds"
	}
	b.WriteString("| Quantity | Price | Fee | " + label + " |\n|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
		e.Quantity.String(), types.FormatMoney(e.Price), types.FormatMoney(e.Fee), types.FormatMoney(e.Total))
	return b.String()
}

func receiptMarkdown(r trade.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Order %d placed\n\n", r.OrderID)
	b.WriteString("| Type | Symbol | Quantity | Price | Fee | Total | Status |\n|---|---|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
		r.Action, r.Symbol, r.Quantity, r.Price, r.Fee, r.Total, r.Status)
	return b.String()
}
