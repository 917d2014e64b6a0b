package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/verdant-ai/verdant/internal/models"
	"github.com/verdant-ai/verdant/internal/stats"
)

const tableWidth = 78

// printResult renders a single evaluation result.
func printResult(r *models.CandidateResult) {
	fmt.Println("═" + strings.Repeat("═", tableWidth-1))
	fmt.Println(" EVALUATION RESULT")
	fmt.Println("═" + strings.Repeat("═", tableWidth-1))
	fmt.Println()

	fmt.Printf("Provider:       %s\n", r.Provider)
	fmt.Printf("Tokens:         %d in / %d out (%d total)\n", r.TokensInput, r.TokensOutput, r.TotalTokens)
	fmt.Printf("Inference:      %v\n", time.Duration(r.InferenceMs)*time.Millisecond)
	fmt.Printf("Energy:         %.8f kWh\n", r.EnergyKWh)
	fmt.Printf("Carbon:         %.8f kgCO2 (%s)\n", r.CarbonKg, r.Method)
	if r.Accuracy != nil {
		fmt.Printf("Quality:        %.1f/100\n", *r.Accuracy)
	} else {
		fmt.Printf("Quality:        not scored\n")
	}
	for _, warning := range r.Warnings {
		fmt.Printf("Warning:        %s\n", warning)
	}
	fmt.Println()
}

// printOutcome renders a comparison round: the winner, the ranked table, and
// any failures.
func printOutcome(o *models.SelectionOutcome, verbose bool) {
	fmt.Println("═" + strings.Repeat("═", tableWidth-1))
	fmt.Println(" PROVIDER COMPARISON")
	fmt.Println("═" + strings.Repeat("═", tableWidth-1))
	fmt.Println()

	if o.Winner != nil {
		fmt.Printf("Winner: %s (score %.6f)\n\n", o.Winner.Provider, o.Scored[0].Score)
	} else {
		fmt.Println("Winner: none, all providers failed")
		fmt.Println()
	}

	if len(o.Scored) > 0 {
		fmt.Printf("%s  %s  %s  %s  %s\n",
			padRight("Provider", 20),
			padRight("Score", 12),
			padRight("Carbon (kg)", 14),
			padRight("Quality", 9),
			"Tokens")
		fmt.Println("─" + strings.Repeat("─", tableWidth-1))
		for _, sc := range o.Scored {
			quality := "-"
			if sc.Result.Accuracy != nil {
				quality = fmt.Sprintf("%.1f", *sc.Result.Accuracy)
			}
			fmt.Printf("%s  %s  %s  %s  %d\n",
				padRight(truncateName(sc.Result.Provider, 20), 20),
				padRight(fmt.Sprintf("%.6f", sc.Score), 12),
				padRight(fmt.Sprintf("%.8f", sc.Result.CarbonKg), 14),
				padRight(quality, 9),
				sc.Result.TotalTokens)
		}
		fmt.Println()
	}

	if len(o.Failures) > 0 {
		fmt.Println("Failed Providers:")
		for _, f := range o.Failures {
			fmt.Printf("  ✗ %s [%s] %s\n", f.Provider, f.Reason, f.Detail)
		}
		fmt.Println()
	}

	if verbose {
		for _, sc := range o.Scored {
			fmt.Printf("─── %s ───\n%s\n\n", sc.Result.Provider, sc.Result.ResponseText)
		}
	}

	fmt.Printf("Round %s completed in %v\n", o.RoundID, time.Duration(o.DurationMs)*time.Millisecond)
}

// printAggregate renders the whole-history stats table.
func printAggregate(agg *stats.Aggregate) {
	fmt.Println("═" + strings.Repeat("═", tableWidth-1))
	fmt.Println(" USAGE STATISTICS")
	fmt.Println("═" + strings.Repeat("═", tableWidth-1))
	fmt.Println()

	fmt.Printf("Total Requests: %d\n", agg.TotalRequests)
	fmt.Printf("Total Energy:   %.8f kWh\n", agg.TotalEnergy)
	fmt.Printf("Total Carbon:   %.8f kgCO2\n", agg.TotalCarbonKg)
	if agg.AccuracyCount > 0 {
		fmt.Printf("Avg Quality:    %.1f/100 (over %d scored)\n", agg.AvgAccuracy, agg.AccuracyCount)
	}
	fmt.Println()

	if len(agg.Providers) == 0 {
		fmt.Println("No evaluations recorded yet.")
		return
	}

	fmt.Printf("%s  %s  %s  %s  %s\n",
		padRight("Provider", 20),
		padRight("Requests", 9),
		padRight("Carbon (kg)", 14),
		padRight("Per Req (kg)", 14),
		"Avg Quality")
	fmt.Println("─" + strings.Repeat("─", tableWidth-1))
	for _, ps := range agg.TopProviders(0) {
		quality := "-"
		if ps.AccuracyCount > 0 {
			quality = fmt.Sprintf("%.1f", ps.AvgAccuracy)
		}
		fmt.Printf("%s  %s  %s  %s  %s\n",
			padRight(truncateName(ps.Provider, 20), 20),
			padRight(fmt.Sprintf("%d", ps.Count), 9),
			padRight(fmt.Sprintf("%.8f", ps.TotalCarbon), 14),
			padRight(fmt.Sprintf("%.8f", ps.CarbonPerRequest), 14),
			quality)
	}
	fmt.Println()
}

// printImpact renders annual-footprint equivalents.
func printImpact(im stats.Impact) {
	fmt.Println("═" + strings.Repeat("═", tableWidth-1))
	fmt.Println(" ANNUAL CARBON IMPACT")
	fmt.Println("═" + strings.Repeat("═", tableWidth-1))
	fmt.Println()

	fmt.Printf("Per request:    %.8f kgCO2\n", im.PerRequestKg)
	fmt.Printf("Volume:         %d requests/day\n", im.RequestsPerDay)
	fmt.Printf("Annual total:   %.4f kgCO2\n", im.AnnualKg)
	fmt.Println()
	fmt.Printf("Equivalent to:\n")
	fmt.Printf("  %.2f trees needed to absorb it in a year\n", im.TreesNeeded)
	fmt.Printf("  %.1f km driven by an average car\n", im.KmByCar)
	fmt.Printf("  %.2f kg of coal burned\n", im.KgCoal)
	fmt.Println()
}

// truncateName shortens a name to maxLen runes, replacing the last rune with "…" if needed.
func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) <= maxLen {
		return name
	}
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
