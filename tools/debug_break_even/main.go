// Command debug_break_even prints the yearly ledger of every scenario in a
// file side by side, then the cumulative net income of the first two and
// where they cross.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	calc "github.com/rpgo/pension-engine/internal/calculation"
	"github.com/rpgo/pension-engine/internal/config"
	"github.com/rpgo/pension-engine/internal/domain"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: debug_break_even <scenario-file>")
		return
	}
	if err := run(os.Stdout, os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(w io.Writer, filename string) error {
	engine := calc.Default()
	scenarios, err := config.NewInputParser(engine.Rules).LoadFromFile(filename)
	if err != nil {
		return err
	}
	var results []*domain.ProjectionResult
	for _, p := range scenarios {
		r, err := engine.ProjectScenario(p)
		if err != nil {
			return fmt.Errorf("scenario %q: %w", p.Name, err)
		}
		results = append(results, r)
	}

	// Rows are compared by index, so stop at the shortest projection.
	minLen := -1
	for _, r := range results {
		if minLen == -1 || len(r.Rows) < minLen {
			minLen = len(r.Rows)
		}
	}

	header := "Index,Age"
	for i := range results {
		header += fmt.Sprintf(",S%d_Pension,S%d_SS,S%d_Supplemental,S%d_Tax,S%d_Net", i+1, i+1, i+1, i+1, i+1)
	}
	fmt.Fprintln(w, header)

	for idx := 0; idx < minLen; idx++ {
		line := fmt.Sprintf("%d,%d", idx, results[0].Rows[idx].Age)
		for _, r := range results {
			row := r.Rows[idx]
			line += fmt.Sprintf(",%s,%s,%s,%s,%s", row.Pension.StringFixed(0), row.SocialSecurity.StringFixed(0),
				row.Supplemental.StringFixed(0), row.EstimatedTax.StringFixed(0), row.NetIncome.StringFixed(0))
		}
		fmt.Fprintln(w, line)
	}

	if len(results) < 2 {
		return nil
	}
	a, b := results[0], results[1]
	cumA, cumB := decimal.Zero, decimal.Zero
	for i := 0; i < minLen; i++ {
		cumA = cumA.Add(a.Rows[i].NetIncome)
		cumB = cumB.Add(b.Rows[i].NetIncome)
		fmt.Fprintf(w, "Cumulative age %d: cumA=%s cumB=%s diff=%s\n", a.Rows[i].Age, cumA.StringFixed(0), cumB.StringFixed(0), cumA.Sub(cumB).StringFixed(0))
	}
	be, err := calc.CumulativeBreakEven(a, b)
	fmt.Fprintf(w, "\nBreakEven: %+v, err=%v\n", be, err)
	return nil
}
