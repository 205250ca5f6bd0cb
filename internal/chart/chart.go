// Package chart builds URLs for the rendered chart pages. The pages
// accept comma-joined, percent-encoded parameter lists; label and
// value lists must stay index-aligned.
package chart

import (
	"net/url"
	"strconv"
	"strings"

	"kakeibo/internal/report"
)

// URL builds the category doughnut chart link for the given breakdown.
func URL(totals []report.CategoryTotal, title, baseURL string) string {
	labels := make([]string, len(totals))
	values := make([]string, len(totals))
	for i, ct := range totals {
		labels[i] = ct.Name
		values[i] = strconv.FormatInt(ct.Amount, 10)
	}

	q := url.Values{}
	q.Set("labels", strings.Join(labels, ","))
	q.Set("values", strings.Join(values, ","))
	q.Set("title", title)

	return strings.TrimSuffix(baseURL, "/") + "/chart?" + q.Encode()
}

// BalanceURL builds the month-by-month balance line chart link. Months
// are YYYY-MM keys and balances[i] belongs to months[i].
func BalanceURL(months []string, balances []int64, baseURL string) string {
	values := make([]string, len(balances))
	for i, b := range balances {
		values[i] = strconv.FormatInt(b, 10)
	}

	q := url.Values{}
	q.Set("months", strings.Join(months, ","))
	q.Set("balances", strings.Join(values, ","))

	return strings.TrimSuffix(baseURL, "/") + "/balance-chart?" + q.Encode()
}
