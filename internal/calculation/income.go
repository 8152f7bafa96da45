package calculation

import (
	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// supplementalYear is one year of supplemental income, unrounded.
type supplementalYear struct {
	AccountWithdrawal decimal.Decimal
	PartTime          decimal.Decimal
	Rental            decimal.Decimal
	TaxableOther      decimal.Decimal
	EndBalance        decimal.Decimal
	RMDApplied        bool
}

func (s supplementalYear) Total() decimal.Decimal {
	return s.AccountWithdrawal.Add(s.PartTime).Add(s.Rental)
}

// incomeStreams carries the running state of each supplemental source across
// projection years. It is created per projection and never shared.
type incomeStreams struct {
	sources   []domain.IncomeSource
	balances  []decimal.Decimal
	birthYear int
	startAge  int
}

func newIncomeStreams(sources []domain.IncomeSource, birthYear, startAge int) *incomeStreams {
	s := &incomeStreams{
		sources:   sources,
		balances:  make([]decimal.Decimal, len(sources)),
		birthYear: birthYear,
		startAge:  startAge,
	}
	for i, src := range sources {
		s.balances[i] = src.Balance
	}
	return s
}

// next advances every source by one year at age.
//
// Account withdrawals take WithdrawalRate of the start-of-year balance,
// raised to the RMD for tax-deferred accounts, capped at the balance; the
// remainder then grows by GrowthRate. Inactive accounts still grow.
// Rental income grows by GrowthRate per year since it began paying.
func (s *incomeStreams) next(age int) supplementalYear {
	var y supplementalYear
	one := decimal.NewFromInt(1)

	for i, src := range s.sources {
		switch src.Kind {
		case domain.IncomeAccountWithdrawal:
			balance := s.balances[i]
			withdrawal := decimal.Zero
			if src.ActiveAt(age) && balance.IsPositive() {
				withdrawal = balance.Mul(src.WithdrawalRate)
				if src.TaxDeferred {
					if rmd := RequiredMinimumDistribution(balance, age, s.birthYear); rmd.GreaterThan(withdrawal) {
						withdrawal = rmd
						y.RMDApplied = true
					}
				}
				withdrawal = decimal.Min(withdrawal, balance)
			}
			s.balances[i] = balance.Sub(withdrawal).Mul(one.Add(src.GrowthRate))
			y.AccountWithdrawal = y.AccountWithdrawal.Add(withdrawal)
			if src.TaxDeferred {
				y.TaxableOther = y.TaxableOther.Add(withdrawal)
			}
			y.EndBalance = y.EndBalance.Add(s.balances[i])
		case domain.IncomePartTime:
			if src.ActiveAt(age) {
				y.PartTime = y.PartTime.Add(src.AnnualAmount)
				y.TaxableOther = y.TaxableOther.Add(src.AnnualAmount)
			}
		case domain.IncomeRental:
			if src.ActiveAt(age) {
				began := src.StartAge
				if began < s.startAge {
					began = s.startAge
				}
				amount := src.AnnualAmount.Mul(one.Add(src.GrowthRate).Pow(decimal.NewFromInt(int64(age - began))))
				y.Rental = y.Rental.Add(amount)
				y.TaxableOther = y.TaxableOther.Add(amount)
			}
		}
	}
	return y
}
