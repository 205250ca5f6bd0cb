package http

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// chartPalette is the color rotation for category slices.
var chartPalette = []string{
	"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF",
	"#FF9F40", "#E7E9ED", "#7BC8A4", "#F67280", "#C06C84",
	"#6C5B7B", "#355C7D", "#F8B500", "#FC5185", "#3FC1C9",
}

type chartPageData struct {
	Title  string
	Labels template.JS
	Values template.JS
	Colors template.JS
}

type balancePageData struct {
	Months   template.JS
	Balances template.JS
}

// handleChart renders a doughnut chart of category totals. Data comes in the
// query string so report replies can link here without server-side state.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	labels, ok := splitParam(r.URL.Query().Get("labels"))
	if !ok {
		http.Error(w, "Missing labels or values", http.StatusBadRequest)
		return
	}
	values, err := parseAmounts(r.URL.Query().Get("values"))
	if err != nil {
		http.Error(w, "Missing labels or values", http.StatusBadRequest)
		return
	}

	title := r.URL.Query().Get("title")
	if title == "" {
		title = "支出内訳"
	}

	colors := make([]string, len(labels))
	for i := range labels {
		colors[i] = chartPalette[i%len(chartPalette)]
	}

	data := chartPageData{
		Title:  title,
		Labels: jsArray(labels),
		Values: jsInts(values),
		Colors: jsArray(colors),
	}
	s.renderPage(w, r, "chart.html", data)
}

// handleBalanceChart renders the cumulative balance line chart.
func (s *Server) handleBalanceChart(w http.ResponseWriter, r *http.Request) {
	months, ok := splitParam(r.URL.Query().Get("months"))
	if !ok {
		http.Error(w, "Missing months or balances", http.StatusBadRequest)
		return
	}
	balances, err := parseAmounts(r.URL.Query().Get("balances"))
	if err != nil {
		http.Error(w, "Missing months or balances", http.StatusBadRequest)
		return
	}

	data := balancePageData{
		Months:   jsArray(months),
		Balances: jsInts(balances),
	}
	s.renderPage(w, r, "balance_chart.html", data)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Failed rendering template", "template", name, "error", err)
	}
}

func splitParam(raw string) ([]string, bool) {
	if raw == "" {
		return nil, false
	}
	return strings.Split(raw, ","), true
}

func parseAmounts(raw string) ([]int64, error) {
	parts, ok := splitParam(raw)
	if !ok {
		return nil, strconv.ErrSyntax
	}
	amounts := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		amounts[i] = n
	}
	return amounts, nil
}

// jsArray marshals strings into a JS array literal safe for template injection.
func jsArray(items []string) template.JS {
	b, err := json.Marshal(items)
	if err != nil {
		return template.JS("[]")
	}
	return template.JS(b)
}

func jsInts(items []int64) template.JS {
	b, err := json.Marshal(items)
	if err != nil {
		return template.JS("[]")
	}
	return template.JS(b)
}
