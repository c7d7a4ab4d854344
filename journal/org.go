package journal

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/rustyeddy/smatrader/strategies"
)

// FormatTradeOrg renders a TradeRecord as an Org-mode block suitable for
// pasting into a journal. Structured facts go in a PROPERTIES drawer so
// they stay searchable.
func FormatTradeOrg(t TradeRecord) string {
	heading := fmt.Sprintf("** %s %s %d (%s)", t.Operation(), t.Instrument, t.Quantity, t.Strategy)

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	if t.RunID != "" {
		b.WriteString(fmt.Sprintf(":RUN_ID: %s\n", t.RunID))
		b.WriteString(fmt.Sprintf(":ID: %s-%d\n", shortID(t.RunID), t.Seq))
	}
	b.WriteString(fmt.Sprintf(":SEQ: %d\n", t.Seq))
	if !t.Time.IsZero() {
		b.WriteString(fmt.Sprintf(":TIME: %s\n", t.Time.UTC().Format(time.RFC3339)))
	}
	b.WriteString(fmt.Sprintf(":INSTRUMENT: %s\n", t.Instrument))
	b.WriteString(fmt.Sprintf(":OPERATION: %s\n", t.Operation()))
	b.WriteString(fmt.Sprintf(":QUANTITY: %d\n", t.Quantity))
	b.WriteString(fmt.Sprintf(":STRATEGY: %s\n", t.Strategy))
	b.WriteString(fmt.Sprintf(":PRICE: %s\n", t.Price.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":PORTFOLIO_VALUE: %s\n", t.PortfolioValue.StringFixed(2)))
	b.WriteString(":END:\n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n")
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

type orgStrategyRow struct {
	ID          strategies.ID
	Description string
	Buys        int
	Sells       int
}

type orgRun struct {
	BacktestRun
	Strategies []orgStrategyRow
	TradeOrg   string
}

var runOrgFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "(open)"
		}
		return t.Format("2006-01-02")
	},
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"join": strings.Join,
}

var runOrgTemplate = template.Must(template.New("run").Funcs(runOrgFuncs).Parse(RunOrgTemplate))

// FormatRunOrg renders a run summary and its trades as an Org document.
func FormatRunOrg(r BacktestRun, trades []TradeRecord) (string, error) {
	data := orgRun{BacktestRun: r, TradeOrg: FormatTradesOrg(trades)}
	for _, id := range strategies.All {
		row := orgStrategyRow{ID: id, Description: id.Description()}
		for _, t := range trades {
			if t.Strategy != id {
				continue
			}
			if t.Action == strategies.Buy {
				row.Buys++
			} else {
				row.Sells++
			}
		}
		data.Strategies = append(data.Strategies, row)
	}

	buf := new(bytes.Buffer)
	if err := runOrgTemplate.Execute(buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteRunOrg writes FormatRunOrg output to path.
func WriteRunOrg(path string, r BacktestRun, trades []TradeRecord) error {
	s, err := FormatRunOrg(r, trades)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0644)
}

const RunOrgTemplate = `* BACKTEST: SMA-Cross {{join .Instruments ", "}}
:PROPERTIES:
:RUN_ID:       {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:DATASET:      {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:INSTRUMENTS:  {{join .Instruments ","}}
:START_DATE:   {{date .Start}}
:END_DATE:     {{date .End}}
:INITIAL_CASH: {{.InitialCash.StringFixed 2}}
:FINAL_CASH:   {{.FinalCash.StringFixed 2}}
:FINAL_VALUE:  {{.FinalValue.StringFixed 2}}
:NET_PL:       {{.NetPL.StringFixed 2}}
:RETURN_PCT:   {{.ReturnPct.StringFixed 2}}
:BARS:         {{.Bars}}
:TRADES:       {{.Trades}}
:CREATED:      [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Parameters
| Parameter         | Value |
|-------------------+-------|
| Fast SMA          | {{.FastPeriod}} |
| Slow SMA          | {{.SlowPeriod}} |
| Allocation        | {{.AllocationFraction.String}} |

** Performance Summary
- Net P/L:   *{{.NetPL.StringFixed 2}}*
- Return:    *{{.ReturnPct.StringFixed 2}}%*
- Buys:      {{.Buys}}
- Sells:     {{.Sells}}

** Strategies
| Strategy | Description | Buys | Sells |
|----------+-------------+------+-------|
{{- range .Strategies }}
| {{.ID}} | {{.Description}} | {{.Buys}} | {{.Sells}} |
{{- end }}

{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}

{{- if .TradeOrg }}

* TRADES
{{.TradeOrg}}
{{- end }}
`
