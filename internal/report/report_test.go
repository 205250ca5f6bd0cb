package report

import (
	"strings"
	"testing"

	"kakeibo/internal/core"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{0, "0"},
		{1, "1"},
		{999, "999"},
		{1000, "1,000"},
		{83700, "83,700"},
		{250000, "250,000"},
		{1234567, "1,234,567"},
		{-166300, "-166,300"},
	}

	for _, tc := range cases {
		if got := FormatAmount(tc.amount); got != tc.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func sampleMonth() []core.Transaction {
	return []core.Transaction{
		{Type: core.Income, Amount: 250000, Category: "収入", Month: "2026-02"},
		{Type: core.Expense, Amount: 1200, Category: "食費", Month: "2026-02"},
		{Type: core.Expense, Amount: 4500, Category: "食費", Month: "2026-02"},
		{Type: core.Expense, Amount: 70000, Category: "住居費", Month: "2026-02"},
		{Type: core.Expense, Amount: 8000, Category: "光熱費", Month: "2026-02"},
	}
}

func TestMonthlySummary(t *testing.T) {
	text, totals := MonthlySummary(sampleMonth(), "2026-02")

	for _, want := range []string{"2026-02", "250,000", "83,700", "166,300", "食費", "住居費"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}

	if len(totals) != 3 {
		t.Fatalf("expected 3 category totals, got %d", len(totals))
	}
	// Largest category first.
	if totals[0].Name != "住居費" || totals[0].Amount != 70000 {
		t.Errorf("unexpected top category: %+v", totals[0])
	}
	if totals[1].Name != "光熱費" || totals[2].Name != "食費" {
		t.Errorf("unexpected ordering: %+v", totals)
	}

	// 70000 of 83700 is 83.6%.
	if !strings.Contains(text, "(83.6%)") {
		t.Errorf("summary missing percentage line:\n%s", text)
	}
}

func TestMonthlySummaryEmpty(t *testing.T) {
	text, totals := MonthlySummary(nil, "2026-02")
	if !strings.Contains(text, "データがありません") {
		t.Errorf("expected no-data message, got:\n%s", text)
	}
	if totals != nil {
		t.Errorf("expected nil totals, got %+v", totals)
	}
}

func TestMonthlySummaryIncomeOnly(t *testing.T) {
	txs := []core.Transaction{{Type: core.Income, Amount: 250000, Category: "収入"}}
	text, totals := MonthlySummary(txs, "2026-02")
	if totals != nil {
		t.Errorf("expected no breakdown without expenses, got %+v", totals)
	}
	if strings.Contains(text, "カテゴリ別支出") {
		t.Errorf("breakdown section should be omitted:\n%s", text)
	}
	if !strings.Contains(text, "📈 残高: ¥250,000") {
		t.Errorf("balance line missing:\n%s", text)
	}
}

func TestFixedList(t *testing.T) {
	items := []core.Transaction{
		{Description: "家賃", Amount: 70000, Type: core.Expense, Category: "住居費"},
		{Description: "電気", Amount: 8000, Type: core.Expense, Category: "光熱費"},
	}
	text := FixedList(items)

	for _, want := range []string{"家賃", "電気", "78,000"} {
		if !strings.Contains(text, want) {
			t.Errorf("fixed list missing %q:\n%s", want, text)
		}
	}
}

func TestFixedListCountsExpensesOnly(t *testing.T) {
	items := []core.Transaction{
		{Description: "家賃", Amount: 70000, Type: core.Expense, Category: "住居費"},
		{Description: "給料", Amount: 250000, Type: core.Income, Category: "収入"},
	}
	text := FixedList(items)
	if !strings.Contains(text, "固定支出合計: ¥70,000/月") {
		t.Errorf("income must not count toward the fixed total:\n%s", text)
	}
}

func TestFixedListEmpty(t *testing.T) {
	if text := FixedList(nil); !strings.Contains(text, "登録されている固定費はありません") {
		t.Errorf("expected none-registered message, got:\n%s", text)
	}
}

func TestRegistrationMessage(t *testing.T) {
	tx := core.Transaction{
		Description: "ランチ",
		Amount:      1200,
		Type:        core.Expense,
		Category:    "食費",
	}
	text := RegistrationMessage(tx)

	for _, want := range []string{"ランチ", "1,200", "支出 / 食費"} {
		if !strings.Contains(text, want) {
			t.Errorf("registration message missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "📌固定") {
		t.Errorf("non-fixed entry must not carry the fixed marker:\n%s", text)
	}

	tx.IsFixed = true
	if !strings.Contains(RegistrationMessage(tx), "📌固定") {
		t.Error("fixed entry missing the fixed marker")
	}
}

func TestBalanceSummary(t *testing.T) {
	txs := []core.Transaction{
		{Type: core.Income, Amount: 250000, Month: "2026-01"},
		{Type: core.Expense, Amount: 50000, Month: "2026-01"},
		{Type: core.Income, Amount: 250000, Month: "2026-02"},
		{Type: core.Expense, Amount: 83700, Month: "2026-02"},
	}
	text := BalanceSummary(txs)

	for _, want := range []string{"2ヶ月", "総収入：¥500,000", "総支出：¥133,700", "貯蓄額：¥366,300"} {
		if !strings.Contains(text, want) {
			t.Errorf("balance summary missing %q:\n%s", want, text)
		}
	}
}

func TestBalanceSummaryNegative(t *testing.T) {
	txs := []core.Transaction{
		{Type: core.Income, Amount: 1000, Month: "2026-02"},
		{Type: core.Expense, Amount: 5000, Month: "2026-02"},
	}
	if text := BalanceSummary(txs); !strings.Contains(text, "貯蓄額：¥-4,000") {
		t.Errorf("negative savings not rendered:\n%s", text)
	}
}

func TestMonthlyBalances(t *testing.T) {
	txs := []core.Transaction{
		{Type: core.Income, Amount: 100000, Month: "2026-01"},
		{Type: core.Expense, Amount: 50000, Month: "2026-01"},
		{Type: core.Income, Amount: 250000, Month: "2026-02"},
		{Type: core.Expense, Amount: 83700, Month: "2026-02"},
		{Type: core.Income, Amount: 30000, Month: "2025-12"},
	}

	months, balances := MonthlyBalances(txs)
	wantMonths := []string{"2025-12", "2026-01", "2026-02"}
	wantBalances := []int64{30000, 80000, 246300}

	if len(months) != len(wantMonths) {
		t.Fatalf("months = %v, want %v", months, wantMonths)
	}
	for i := range wantMonths {
		if months[i] != wantMonths[i] || balances[i] != wantBalances[i] {
			t.Errorf("index %d: (%s, %d), want (%s, %d)", i, months[i], balances[i], wantMonths[i], wantBalances[i])
		}
	}
}

func TestExpenseAnalysis(t *testing.T) {
	expenses := []core.Transaction{
		{Type: core.Expense, Amount: 1200, Category: "食費", Month: "2026-01"},
		{Type: core.Expense, Amount: 70000, Category: "住居費", Month: "2026-02"},
		{Type: core.Expense, Amount: 4500, Category: "食費", Month: "2026-02"},
	}
	text, totals := ExpenseAnalysis(expenses)

	if !strings.Contains(text, "2ヶ月") {
		t.Errorf("month span missing:\n%s", text)
	}
	if len(totals) != 2 || totals[0].Name != "住居費" || totals[1].Amount != 5700 {
		t.Errorf("unexpected totals: %+v", totals)
	}
}

func TestExpenseAnalysisEmpty(t *testing.T) {
	text, totals := ExpenseAnalysis(nil)
	if !strings.Contains(text, "支出データがありません") {
		t.Errorf("expected no-expense message, got:\n%s", text)
	}
	if totals != nil {
		t.Errorf("expected nil totals, got %+v", totals)
	}
}

func TestFormattersAreIdempotent(t *testing.T) {
	txs := sampleMonth()
	first, _ := MonthlySummary(txs, "2026-02")
	second, _ := MonthlySummary(txs, "2026-02")
	if first != second {
		t.Error("MonthlySummary output differs between identical calls")
	}

	if BalanceSummary(txs) != BalanceSummary(txs) {
		t.Error("BalanceSummary output differs between identical calls")
	}
}
