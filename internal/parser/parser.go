// Package parser turns raw chat messages into structured intents.
//
// Two message shapes are recognized: a fixed command phrase (今月,
// 固定一覧, 残高) and a transaction entry of the form
// "{説明} {金額} [{カテゴリ}] [固定]". Anything else is no match.
package parser

import (
	"strconv"
	"strings"
	"time"

	"kakeibo/internal/core"
)

// Draft is a parsed transaction before classification and persistence.
// Category is empty when the user did not supply one.
type Draft struct {
	Description string
	Amount      int64
	Category    string
	IsFixed     bool
}

// commands maps trigger phrases to command tags. Matching is exact
// after trimming surrounding whitespace; no partial or case folding.
var commands = map[string]core.Command{
	"今月":   core.CommandMonthlySummary,
	"固定一覧": core.CommandFixedList,
	"残高":   core.CommandBalance,
}

// jst is the fixed UTC+9 civil calendar all month keys are derived in,
// regardless of the server's local timezone.
var jst = time.FixedZone("JST", 9*60*60)

const fixedMarker = "固定"

// ParseCommand matches the trimmed text against the fixed trigger
// phrases. The second return is false when the text is not a command.
func ParseCommand(text string) (core.Command, bool) {
	cmd, ok := commands[strings.TrimSpace(text)]
	return cmd, ok
}

// ParseTransaction parses a transaction entry. The first token is the
// description, the second the amount (comma grouping and full-width
// digits accepted). Of the remaining tokens, 固定 sets the fixed flag
// and the first other token becomes the category; later tokens are
// ignored on purpose, so trailing chatter does not reject the entry.
func ParseTransaction(text string) (Draft, bool) {
	normalized := normalizeWidth(strings.TrimSpace(text))
	parts := strings.Fields(normalized)
	if len(parts) < 2 {
		return Draft{}, false
	}

	amountStr := strings.ReplaceAll(parts[1], ",", "")
	amount, ok := parseAmountPrefix(amountStr)
	if !ok || amount <= 0 {
		return Draft{}, false
	}

	draft := Draft{
		Description: parts[0],
		Amount:      amount,
	}
	for _, token := range parts[2:] {
		if token == fixedMarker {
			draft.IsFixed = true
		} else if draft.Category == "" {
			draft.Category = token
		}
	}

	return draft, true
}

// parseAmountPrefix reads the leading run of digits, so "1200円"
// yields 1200 and "12.5" yields 12. A token with no digit prefix is
// no match. A sign prefix is consumed so "-500" parses negative and
// gets rejected by the amount check, not treated as a non-number.
func parseAmountPrefix(s string) (int64, bool) {
	neg := false
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}

	n, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// normalizeWidth shifts full-width digits to ASCII and full-width
// spaces to plain spaces.
func normalizeWidth(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '０' && r <= '９':
			return r - 0xfee0
		case r == '　':
			return ' '
		}
		return r
	}, s)
}

// MonthOf returns the YYYY-MM month key of the given instant in the
// fixed UTC+9 calendar. The reference time is explicit so callers stay
// testable; CurrentMonth supplies the real clock.
func MonthOf(t time.Time) string {
	return t.In(jst).Format("2006-01")
}

// CurrentMonth returns the month key for now.
func CurrentMonth() string {
	return MonthOf(time.Now())
}
