package assistant

import (
	"fmt"
	"strings"

	"github.com/takayashoshi888/nihaokaoqing/internal/core"
)

// BuildPrompt renders the structured prompt for the summarization model:
// the full identity, attendance history and expense ledger plus the user's
// free-text question. The model answers in Chinese to match the UI.
func BuildPrompt(identity core.Identity, records []core.AttendanceRecord, expenses []core.ExpenseEntry, query string) string {
	recordsText := "无"
	if len(records) > 0 {
		lines := make([]string, 0, len(records))
		for _, r := range records {
			lines = append(lines, fmt.Sprintf("%s at %s", r.Date, r.Time))
		}
		recordsText = strings.Join(lines, "\n")
	}

	expensesText := "无"
	if len(expenses) > 0 {
		lines := make([]string, 0, len(expenses))
		for _, e := range expenses {
			note := e.Note
			if note == "" {
				note = "无备注"
			}
			lines = append(lines, fmt.Sprintf("%s: %s - %d円 (%s)", e.Date, e.Category.Label(), e.Amount, note))
		}
		expensesText = strings.Join(lines, "\n")
	}

	var b strings.Builder
	b.WriteString("作为一名数据分析助理，请根据以下考勤和费用数据以及用户问题生成一份简洁的中文总结。\n\n")
	b.WriteString("用户信息:\n")
	fmt.Fprintf(&b, "- 姓名: %s\n", identity.Name)
	fmt.Fprintf(&b, "- 现场名称: %s\n\n", identity.SiteName)
	b.WriteString("考勤记录 (日期和时间):\n")
	b.WriteString(recordsText)
	b.WriteString("\n\n费用记录:\n")
	b.WriteString(expensesText)
	fmt.Fprintf(&b, "\n\n用户问题: %q\n\n", query)
	b.WriteString("请根据以上信息回答用户的问题。如果只是要求总结，请提供一份整体考勤和费用情况的摘要。\n")
	return b.String()
}
