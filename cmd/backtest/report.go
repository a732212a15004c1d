package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/argo-catalyst/internal/types"
	"github.com/shopspring/decimal"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	profitStyle = cellStyle.Foreground(lipgloss.Color("#04B575"))
	lossStyle   = cellStyle.Foreground(lipgloss.Color("#FF4672"))
	labelStyle  = lipgloss.NewStyle().Width(16).Foreground(lipgloss.Color("#888888"))
)

const pnlColumn = 6

// summary is the performance overview printed after a run.
type summary struct {
	Trades          int
	Winners         int
	Forced          int
	TotalPnL        decimal.Decimal
	TotalCommission decimal.Decimal
	EventsProcessed int
}

func (s summary) WinRate() float64 {
	if s.Trades == 0 {
		return 0
	}

	return float64(s.Winners) / float64(s.Trades)
}

func summarize(trades []types.TradeRecord, totalPnL decimal.Decimal, eventsProcessed int) summary {
	s := summary{
		Trades:          len(trades),
		TotalPnL:        totalPnL,
		TotalCommission: decimal.Zero,
		EventsProcessed: eventsProcessed,
	}

	for _, trade := range trades {
		if trade.PnL > 0 {
			s.Winners++
		}

		if trade.Forced {
			s.Forced++
		}

		s.TotalCommission = s.TotalCommission.Add(decimal.NewFromFloat(trade.Commission))
	}

	return s
}

func formatTimestamp(micros int64) string {
	return time.UnixMicro(micros).UTC().Format("2006-01-02 15:04:05.000")
}

// renderTrades renders the trade log as a table, one row per closed trade.
func renderTrades(trades []types.TradeRecord) string {
	if len(trades) == 0 {
		return titleStyle.Render("No trades")
	}

	rows := make([][]string, 0, len(trades))
	pnls := make([]float64, 0, len(trades))

	for _, trade := range trades {
		exit := formatTimestamp(trade.ExitTimestamp)
		if trade.Forced {
			exit += " (forced)"
		}

		rows = append(rows, []string{
			trade.Symbol,
			string(trade.Direction),
			formatTimestamp(trade.EntryTimestamp),
			exit,
			fmt.Sprintf("%.4f", trade.EntryPrice),
			fmt.Sprintf("%.4f", trade.ExitPrice),
			fmt.Sprintf("%.2f", trade.PnL),
			fmt.Sprintf("%g", trade.Quantity),
			string(trade.Regime),
		})
		pnls = append(pnls, trade.PnL)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))).
		Headers("SYMBOL", "SIDE", "ENTRY TIME", "EXIT TIME", "ENTRY", "EXIT", "PNL", "QTY", "REGIME").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			if col == pnlColumn && row >= 0 && row < len(pnls) {
				if pnls[row] < 0 {
					return lossStyle
				}

				return profitStyle
			}

			return cellStyle
		})

	return titleStyle.Render("Trades") + "\n" + t.Render()
}

func renderSummary(s summary) string {
	lines := []struct {
		label string
		value string
	}{
		{"Trades", fmt.Sprintf("%d", s.Trades)},
		{"Win rate", fmt.Sprintf("%.2f%%", s.WinRate()*100)},
		{"Forced exits", fmt.Sprintf("%d", s.Forced)},
		{"Total PnL", s.TotalPnL.StringFixed(2)},
		{"Commission", s.TotalCommission.StringFixed(2)},
		{"Events", fmt.Sprintf("%d", s.EventsProcessed)},
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Summary"))

	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(line.label))
		b.WriteString(line.value)
	}

	return b.String()
}
