package parser

import (
	"testing"
	"time"

	"kakeibo/internal/core"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		text string
		want core.Command
		ok   bool
	}{
		{"今月", core.CommandMonthlySummary, true},
		{"固定一覧", core.CommandFixedList, true},
		{"残高", core.CommandBalance, true},
		{"  今月  ", core.CommandMonthlySummary, true},
		{"ランチ 1200", "", false},
		{"今月の集計", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		cmd, ok := ParseCommand(tc.text)
		if ok != tc.ok || cmd != tc.want {
			t.Errorf("ParseCommand(%q) = (%q, %v), want (%q, %v)", tc.text, cmd, ok, tc.want, tc.ok)
		}
	}
}

func TestParseTransaction(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Draft
	}{
		{"description and amount", "ランチ 1200", Draft{Description: "ランチ", Amount: 1200}},
		{"with category", "スーパー 4500 食費", Draft{Description: "スーパー", Amount: 4500, Category: "食費"}},
		{"fixed flag", "家賃 70000 固定", Draft{Description: "家賃", Amount: 70000, IsFixed: true}},
		{"category and fixed", "電気 8000 光熱費 固定", Draft{Description: "電気", Amount: 8000, Category: "光熱費", IsFixed: true}},
		{"fixed before category", "電気 8000 固定 光熱費", Draft{Description: "電気", Amount: 8000, Category: "光熱費", IsFixed: true}},
		{"full-width digits", "ランチ １２００", Draft{Description: "ランチ", Amount: 1200}},
		{"full-width space", "ランチ　1200", Draft{Description: "ランチ", Amount: 1200}},
		{"comma grouping", "給料 250,000", Draft{Description: "給料", Amount: 250000}},
		// First free token wins; later ones are discarded, not rejected.
		{"extra tokens ignored", "スーパー 4500 食費 メモ", Draft{Description: "スーパー", Amount: 4500, Category: "食費"}},
		// The amount is the leading digit run; trailing text is dropped.
		{"unit suffix", "ランチ 1200円", Draft{Description: "ランチ", Amount: 1200}},
		{"decimal truncated", "ランチ 12.5", Draft{Description: "ランチ", Amount: 12}},
		{"full-width digits with suffix", "ランチ １２００円", Draft{Description: "ランチ", Amount: 1200}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseTransaction(tc.text)
			if !ok {
				t.Fatalf("ParseTransaction(%q) did not match", tc.text)
			}
			if got != tc.want {
				t.Fatalf("ParseTransaction(%q) = %+v, want %+v", tc.text, got, tc.want)
			}
		})
	}
}

func TestParseTransactionRejects(t *testing.T) {
	cases := []string{
		"",
		"こんにちは",
		"ランチ abc",
		"ランチ 0",
		"ランチ -500",
		"ランチ 円1200",
	}

	for _, text := range cases {
		if draft, ok := ParseTransaction(text); ok {
			t.Errorf("ParseTransaction(%q) matched unexpectedly: %+v", text, draft)
		}
	}
}

func TestMonthOf(t *testing.T) {
	cases := []struct {
		instant time.Time
		want    string
	}{
		{time.Date(2026, 2, 13, 18, 0, 0, 0, time.FixedZone("JST", 9*3600)), "2026-02"},
		// 23:00 UTC on Jan 31 is already February in UTC+9.
		{time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC), "2026-02"},
		{time.Date(2025, 12, 31, 15, 0, 0, 0, time.UTC), "2026-01"},
		{time.Date(2026, 6, 15, 3, 0, 0, 0, time.UTC), "2026-06"},
	}

	for _, tc := range cases {
		if got := MonthOf(tc.instant); got != tc.want {
			t.Errorf("MonthOf(%v) = %q, want %q", tc.instant, got, tc.want)
		}
	}
}
