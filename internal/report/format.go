package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/locale"
)

// InsightsLimit is how much AI commentary fits in a report message.
const InsightsLimit = 500

// NoExpensesMessage is sent instead of an empty monthly report.
const NoExpensesMessage = "📊 Belum ada pengeluaran tercatat untuk bulan ini. Mulai tambahkan pengeluaran!\n\n" +
	"📊 No expenses recorded for this month yet. Start adding some expenses!"

// MonthLabel renders a scope as "March 2024".
func MonthLabel(scope domain.Scope) string {
	return fmt.Sprintf("%s %d", time.Month(scope.Month).String(), scope.Year)
}

// FormatMonthlyReport renders the bilingual Markdown report. insights may be
// empty, in which case the AI block is left out.
func FormatMonthlyReport(report domain.MonthlyReport, insights string) string {
	if report.Count == 0 {
		return NoExpensesMessage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Laporan Bulanan / Monthly Report - %s*\n\n", MonthLabel(report.Scope))
	fmt.Fprintf(&b, "💰 *Total Pengeluaran / Total Spent:* %s\n", locale.FormatRupiah(report.Total))
	fmt.Fprintf(&b, "📝 *Total Transaksi / Total Transactions:* %d\n\n", report.Count)
	b.WriteString("*Rincian per Kategori / Breakdown by Category:*\n")
	for _, c := range report.Categories {
		fmt.Fprintf(&b, "• %s\n", CategoryLabel(c))
	}

	if strings.TrimSpace(insights) != "" {
		fmt.Fprintf(&b, "\n🤖 *Wawasan AI / AI Insights:*\n%s", TruncateInsights(strings.TrimSpace(insights), InsightsLimit))
	}

	return b.String()
}

// FormatRecent renders the latest expenses as a numbered list.
func FormatRecent(records []domain.ExpenseRecord) string {
	if len(records) == 0 {
		return "📋 Belum ada pengeluaran. / No expenses recorded yet. Start adding some!"
	}

	var b strings.Builder
	b.WriteString("📋 *Pengeluaran Terbaru / Recent Expenses:*\n\n")
	for i, r := range records {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, locale.FormatRupiah(r.Amount), r.Description)
		fmt.Fprintf(&b, "   📅 %s | 🏷️ %s\n\n", r.Date.Format("02/01/2006"), r.Category)
	}
	return b.String()
}

// FormatTotal renders the month total.
func FormatTotal(scope domain.Scope, total float64) string {
	return fmt.Sprintf("💰 *Total %s:* %s", MonthLabel(scope), locale.FormatRupiah(total))
}

// FormatCategories lists the taxonomy.
func FormatCategories(categories []domain.Category) string {
	var b strings.Builder
	b.WriteString("🏷️ *Kategori / Available Categories:*\n\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "• %s\n", c)
	}
	b.WriteString("\nKategori dideteksi otomatis. / Categories are automatically detected, but you can specify them in your expense text.")
	return b.String()
}

// FormatDigest renders the short message pushed on the first of the month.
func FormatDigest(report domain.MonthlyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Laporan Bulanan / Monthly Report - %s*\n\n", MonthLabel(report.Scope))
	fmt.Fprintf(&b, "💰 Total Pengeluaran / Total Spent: %s\n", locale.FormatRupiah(report.Total))
	fmt.Fprintf(&b, "📝 Transaksi / Transactions: %d\n", report.Count)
	if len(report.Categories) > 0 {
		top := report.Categories[0]
		fmt.Fprintf(&b, "🏆 Kategori teratas / Top category: %s\n", CategoryLabel(top))
	}
	b.WriteString("\nGunakan /report untuk rincian lengkap! / Use /report for detailed breakdown!")
	return b.String()
}
