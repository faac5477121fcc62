// Package report renders the printable export: the same data the stats
// views show, serialized into a standalone HTML document the browser's
// print dialog turns into a PDF.
package report

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/takayashoshi888/nihaokaoqing/internal/core"
)

type Data struct {
	Identity    core.Identity
	GeneratedAt string
	MonthTitle  string

	// Full attendance history, date descending, with weekday labels.
	Records []RecordRow

	// Current-month ledger, date descending, same order as the expense view.
	Ledger     []LedgerRow
	ByCategory []core.CategoryTotal
	Total      int64

	// Optional assistant summary carried over from the assistant view.
	Summary string
}

type RecordRow struct {
	Date    string
	Weekday string
	Time    string
}

type LedgerRow struct {
	Date     string
	Category string
	Amount   int64
	Note     string
}

// Build assembles the export data for now's month from the stored records
// and ledger. The record and ledger ordering matches the on-screen views
// exactly.
func Build(identity core.Identity, records map[string]core.AttendanceRecord, entries []core.ExpenseEntry, summary string, now time.Time) Data {
	sorted := core.RecentRecords(records, len(records))
	rows := make([]RecordRow, 0, len(sorted))
	for _, r := range sorted {
		rows = append(rows, RecordRow{
			Date:    r.Date,
			Weekday: core.WeekdayLabel(r.Date),
			Time:    r.Time,
		})
	}

	stats := core.SummarizeExpenses(entries, now.Year(), now.Month())
	month := core.MonthLedger(entries, now.Year(), now.Month())
	ledger := make([]LedgerRow, 0, len(month))
	for _, e := range month {
		ledger = append(ledger, LedgerRow{
			Date:     e.Date,
			Category: e.Category.Label(),
			Amount:   e.Amount,
			Note:     e.Note,
		})
	}

	return Data{
		Identity:    identity,
		GeneratedAt: core.DateKey(now) + " " + core.ClockTime(now),
		MonthTitle:  fmt.Sprintf("%d年%d月", now.Year(), int(now.Month())),
		Records:     rows,
		Ledger:      ledger,
		ByCategory:  stats.ByCategory,
		Total:       stats.Total,
		Summary:     summary,
	}
}

// Render writes the printable document.
func Render(w io.Writer, data Data) error {
	return reportTemplate.Execute(w, data)
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="zh">
<head>
<meta charset="utf-8">
<title>考勤费用报告 - {{.Identity.Name}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.4rem; }
h2 { font-size: 1.1rem; margin-top: 2rem; border-bottom: 1px solid #ccc; padding-bottom: .3rem; }
table { border-collapse: collapse; width: 100%; margin-top: .5rem; }
th, td { border: 1px solid #ddd; padding: .35rem .6rem; text-align: left; font-size: .9rem; }
th { background: #f5f5f5; }
tfoot td { font-weight: bold; }
.meta { color: #666; font-size: .85rem; }
.summary { white-space: pre-wrap; background: #f9f9f9; padding: .8rem; border-radius: 4px; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>考勤费用报告</h1>
<p class="meta">姓名：{{.Identity.Name}} ／ 现场：{{.Identity.SiteName}} ／ 生成时间：{{.GeneratedAt}}</p>

<h2>考勤记录</h2>
{{if .Records}}
<table>
<thead><tr><th>日期</th><th>星期</th><th>打卡时间</th></tr></thead>
<tbody>
{{range .Records}}<tr><td>{{.Date}}</td><td>{{.Weekday}}</td><td>{{.Time}}</td></tr>
{{end}}</tbody>
</table>
{{else}}<p>暂无考勤记录</p>{{end}}

<h2>{{.MonthTitle}}费用明细</h2>
{{if .Ledger}}
<table>
<thead><tr><th>日期</th><th>类别</th><th>金额 (円)</th><th>备注</th></tr></thead>
<tbody>
{{range .Ledger}}<tr><td>{{.Date}}</td><td>{{.Category}}</td><td>{{.Amount}}</td><td>{{.Note}}</td></tr>
{{end}}</tbody>
<tfoot><tr><td colspan="2">合计</td><td>{{.Total}}</td><td></td></tr></tfoot>
</table>
{{else}}<p>本月暂无费用记录</p>{{end}}

{{if .Summary}}
<h2>AI 总结</h2>
<div class="summary">{{.Summary}}</div>
{{end}}
</body>
</html>
`))
