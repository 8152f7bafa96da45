package calculation

import (
	"fmt"

	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/rpgo/pension-engine/pkg/money"
	"github.com/shopspring/decimal"
)

// CumulativeBreakEvenResult describes where cumulative net income of two
// projections crosses.
type CumulativeBreakEvenResult struct {
	// YearIndex is the projection row in which the crossover happens.
	YearIndex int `json:"year_index"`
	// Age is the fractional age of the crossover, interpolated within the year.
	Age decimal.Decimal `json:"age"`
	// Fraction is the position within the year (0..1).
	Fraction         decimal.Decimal `json:"fraction"`
	CumulativeAmount decimal.Decimal `json:"cumulative_amount"`
	// Leader names which projection is ahead after the crossover ("a" or "b").
	Leader string `json:"leader"`
}

// CumulativeBreakEven finds the first crossover (if any) between cumulative
// net income of projections a and b. Rows are aligned by index; both
// projections should share a start age. If no crossover is found, it
// returns nil, nil.
func CumulativeBreakEven(a, b *domain.ProjectionResult) (*CumulativeBreakEvenResult, error) {
	if a == nil || b == nil || len(a.Rows) == 0 || len(b.Rows) == 0 {
		return nil, fmt.Errorf("one or both projections are empty")
	}
	if a.Rows[0].Age != b.Rows[0].Age {
		return nil, domain.Invalid("projections", "start ages differ (%d vs %d)", a.Rows[0].Age, b.Rows[0].Age)
	}

	n := len(a.Rows)
	if len(b.Rows) < n {
		n = len(b.Rows)
	}

	cumA, cumB := decimal.Zero, decimal.Zero
	for i := 0; i < n; i++ {
		netA, netB := a.Rows[i].NetIncome, b.Rows[i].NetIncome
		prevDiff := cumA.Sub(cumB)
		cumA = cumA.Add(netA)
		cumB = cumB.Add(netB)
		currDiff := cumA.Sub(cumB)

		if i == 0 {
			continue
		}
		if currDiff.IsZero() && !prevDiff.IsZero() {
			return crossover(a.Rows[i], i, decimal.NewFromInt(1), cumA, prevDiff), nil
		}
		if prevDiff.Mul(currDiff).IsNegative() {
			// diff(t) = prevDiff + t (currDiff - prevDiff); solve diff(t) = 0
			t := prevDiff.Neg().Div(currDiff.Sub(prevDiff))
			t = clamp01(t)
			at := cumA.Sub(netA).Add(netA.Mul(t))
			return crossover(a.Rows[i], i, t, at, prevDiff), nil
		}
	}
	return nil, nil
}

func crossover(row domain.ProjectionRow, i int, t, amount, prevDiff decimal.Decimal) *CumulativeBreakEvenResult {
	leader := "b"
	if prevDiff.IsNegative() {
		leader = "a"
	}
	return &CumulativeBreakEvenResult{
		YearIndex:        i,
		Age:              money.Years(decimal.NewFromInt(int64(row.Age)).Add(t)),
		Fraction:         money.Rate(t),
		CumulativeAmount: money.Cents(amount),
		Leader:           leader,
	}
}
