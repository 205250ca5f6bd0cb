// Package report computes totals over transaction collections and
// renders them as reply text. All functions are pure: they accept
// already-fetched, already-scoped records and return strings, so a
// caller can safely retry or repeat any of them.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"kakeibo/internal/core"
)

const (
	heavyRule = "━━━━━━━━━━━━━━━"
	lightRule = "───────────────"
)

// CategoryTotal is one category's aggregated expense amount.
type CategoryTotal struct {
	Name   string
	Amount int64
}

// FormatAmount renders yen with 3-digit comma grouping. Balances can
// be negative, so the sign is preserved.
func FormatAmount(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// MonthSpan counts the distinct month keys present.
func MonthSpan(txs []core.Transaction) int {
	months := make(map[string]struct{})
	for _, tx := range txs {
		if tx.Month != "" {
			months[tx.Month] = struct{}{}
		}
	}
	return len(months)
}

func typeIcon(t core.Type) string {
	if t == core.Income {
		return "💰"
	}
	return "💸"
}

func typeLabel(t core.Type) string {
	if t == core.Income {
		return "収入"
	}
	return "支出"
}

// percentOf renders part as a one-decimal percentage of whole. A zero
// whole yields 0.0 rather than dividing by zero.
func percentOf(part, whole int64) string {
	if whole == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(part)/float64(whole)*100)
}

// sortedTotals flattens a category sum map into a slice ordered by
// descending amount. Ties keep insertion order of the sort input.
func sortedTotals(sums map[string]int64) []CategoryTotal {
	totals := make([]CategoryTotal, 0, len(sums))
	for name, amount := range sums {
		totals = append(totals, CategoryTotal{Name: name, Amount: amount})
	}
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].Amount != totals[j].Amount {
			return totals[i].Amount > totals[j].Amount
		}
		return totals[i].Name < totals[j].Name
	})
	return totals
}

// MonthlySummary renders one month's income/expense/balance report.
// The returned totals are the per-category expense breakdown, largest
// first, for chart building; nil when there were no expenses.
func MonthlySummary(txs []core.Transaction, month string) (string, []CategoryTotal) {
	if len(txs) == 0 {
		return fmt.Sprintf("📊 %s の集計\n\nデータがありません。", month), nil
	}

	var totalIncome, totalExpense int64
	categorySums := make(map[string]int64)
	for _, tx := range txs {
		if tx.Type == core.Income {
			totalIncome += tx.Amount
		} else {
			totalExpense += tx.Amount
			categorySums[tx.Category] += tx.Amount
		}
	}
	balance := totalIncome - totalExpense

	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s の集計\n", month)
	b.WriteString(heavyRule + "\n")
	fmt.Fprintf(&b, "💰 総収入: ¥%s\n", FormatAmount(totalIncome))
	fmt.Fprintf(&b, "💸 総支出: ¥%s\n", FormatAmount(totalExpense))
	b.WriteString(heavyRule + "\n")
	fmt.Fprintf(&b, "📈 残高: ¥%s\n", FormatAmount(balance))

	totals := sortedTotals(categorySums)
	if len(totals) > 0 {
		b.WriteString("\n📂 カテゴリ別支出\n")
		b.WriteString(lightRule + "\n")
		for _, ct := range totals {
			fmt.Fprintf(&b, "  %s: ¥%s (%s%%)\n", ct.Name, FormatAmount(ct.Amount), percentOf(ct.Amount, totalExpense))
		}
	}

	return b.String(), totals
}

// FixedList renders the recurring-cost listing. The input is already
// deduplicated by the storage layer (latest row per description) and
// the running total counts expenses only.
func FixedList(items []core.Transaction) string {
	if len(items) == 0 {
		return "📋 固定費一覧\n\n登録されている固定費はありません。"
	}

	var b strings.Builder
	b.WriteString("📋 固定費一覧\n")
	b.WriteString(heavyRule + "\n")

	var total int64
	for _, item := range items {
		fmt.Fprintf(&b, "%s %s: ¥%s [%s]\n", typeIcon(item.Type), item.Description, FormatAmount(item.Amount), item.Category)
		if item.Type == core.Expense {
			total += item.Amount
		}
	}

	b.WriteString(heavyRule + "\n")
	fmt.Fprintf(&b, "📌 固定支出合計: ¥%s/月", FormatAmount(total))

	return b.String()
}

// RegistrationMessage confirms one freshly inserted transaction.
func RegistrationMessage(tx core.Transaction) string {
	var b strings.Builder
	b.WriteString("✅ 登録しました\n")
	fmt.Fprintf(&b, "%s %s: ¥%s\n", typeIcon(tx.Type), tx.Description, FormatAmount(tx.Amount))
	fmt.Fprintf(&b, "📂 %s / %s", typeLabel(tx.Type), tx.Category)
	if tx.IsFixed {
		b.WriteString(" 📌固定")
	}
	return b.String()
}

// BalanceSummary renders the lifetime income/expense/savings report
// over the user's whole history, annotated with the month span.
func BalanceSummary(txs []core.Transaction) string {
	var totalIncome, totalExpense int64
	for _, tx := range txs {
		if tx.Type == core.Income {
			totalIncome += tx.Amount
		} else {
			totalExpense += tx.Amount
		}
	}
	balance := totalIncome - totalExpense

	var b strings.Builder
	fmt.Fprintf(&b, "💰通算残高（%dヶ月）\n", MonthSpan(txs))
	b.WriteString(heavyRule + "\n")
	fmt.Fprintf(&b, "総収入：¥%s\n", FormatAmount(totalIncome))
	fmt.Fprintf(&b, "総支出：¥%s\n", FormatAmount(totalExpense))
	b.WriteString(heavyRule + "\n")
	fmt.Fprintf(&b, "貯蓄額：¥%s", FormatAmount(balance))

	return b.String()
}

// MonthlyBalances returns the month keys present in the history,
// ascending, with the cumulative balance at the end of each month.
// Feeds the balance-trend chart.
func MonthlyBalances(txs []core.Transaction) ([]string, []int64) {
	perMonth := make(map[string]int64)
	for _, tx := range txs {
		if tx.Month == "" {
			continue
		}
		if tx.Type == core.Income {
			perMonth[tx.Month] += tx.Amount
		} else {
			perMonth[tx.Month] -= tx.Amount
		}
	}

	months := make([]string, 0, len(perMonth))
	for m := range perMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	balances := make([]int64, len(months))
	var running int64
	for i, m := range months {
		running += perMonth[m]
		balances[i] = running
	}
	return months, balances
}

// ExpenseAnalysis renders lifetime spending per category, largest
// first. Input must already be filtered to expenses.
func ExpenseAnalysis(expenses []core.Transaction) (string, []CategoryTotal) {
	if len(expenses) == 0 {
		return "📊支出分析（通算）\n\n支出データがありません。", nil
	}

	categorySums := make(map[string]int64)
	for _, tx := range expenses {
		cat := tx.Category
		if cat == "" {
			cat = "その他"
		}
		categorySums[cat] += tx.Amount
	}
	totals := sortedTotals(categorySums)

	var b strings.Builder
	fmt.Fprintf(&b, "📊支出分析（通算：%dヶ月）\n", MonthSpan(expenses))
	b.WriteString(heavyRule + "\n")
	for _, ct := range totals {
		fmt.Fprintf(&b, "%s：¥%s\n", ct.Name, FormatAmount(ct.Amount))
	}

	return b.String(), totals
}
