// Package classifier assigns an income/expense type and a spending
// category to a transaction from keywords in its description. It is a
// best-effort heuristic: every description gets some bucket.
package classifier

import (
	"strings"

	"kakeibo/internal/core"
)

// IncomeCategory is the single label for all income; income is never
// subcategorized.
const IncomeCategory = "収入"

// FallbackCategory is returned when no rule matches.
const FallbackCategory = "その他"

var incomeKeywords = []string{
	"給料", "給与", "ボーナス", "賞与", "収入", "副業", "臨時収入",
}

// rule maps a keyword set to one category label. Rules are evaluated
// in order; the first hit wins.
type rule struct {
	category string
	keywords []string
}

var rules = []rule{
	{"食費", []string{"ランチ", "昼食", "朝食", "夕食", "ディナー", "スーパー", "コンビニ", "カフェ", "外食", "弁当", "食事"}},
	{"交通費", []string{"電車", "バス", "タクシー", "新幹線", "定期", "ガソリン"}},
	{"住居費", []string{"家賃", "住宅", "管理費"}},
	{"光熱費", []string{"電気", "ガス", "水道", "光熱"}},
	{"通信費", []string{"スマホ", "携帯", "ネット", "通信", "Wi-Fi"}},
	{"娯楽", []string{"映画", "ゲーム", "カラオケ", "旅行", "飲み会", "漫画"}},
}

// IsIncome reports whether the description looks like income.
// Substring containment, not exact match.
func IsIncome(description string) bool {
	for _, kw := range incomeKeywords {
		if strings.Contains(description, kw) {
			return true
		}
	}
	return false
}

// TypeOf infers the transaction type from the description.
func TypeOf(description string) core.Type {
	if IsIncome(description) {
		return core.Income
	}
	return core.Expense
}

// Classify returns the category label for a description. Income always
// maps to the single income label; expenses go through the ordered rule
// table with その他 as the fallback.
func Classify(description string, txType core.Type) string {
	if txType == core.Income {
		return IncomeCategory
	}
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(description, kw) {
				return r.category
			}
		}
	}
	return FallbackCategory
}
