package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/rpgo/pension-engine/pkg/dateutil"
)

// distributionPeriods is the IRS Uniform Lifetime Table from age 72 through 100.
var distributionPeriods = []string{
	"27.4", "26.5", "25.5", "24.6", "23.7", "22.9", "22.0", "21.1", "20.2", "19.4",
	"18.5", "17.7", "16.8", "16.0", "15.2", "14.4", "13.7", "12.9", "12.2", "11.5",
	"10.8", "10.1", "9.5", "8.9", "8.4", "7.8", "7.3", "6.8", "6.4",
}

const firstTableAge = 72

var finalDistributionPeriod = decimal.NewFromInt(6)

// RequiredMinimumDistribution returns the RMD for a tax-deferred balance at
// age for a member born in birthYear. Below the RMD start age it is zero.
func RequiredMinimumDistribution(balance decimal.Decimal, age, birthYear int) decimal.Decimal {
	if !balance.IsPositive() || !dateutil.IsRMDAge(birthYear, age) || age < firstTableAge {
		return decimal.Zero
	}
	i := age - firstTableAge
	if i >= len(distributionPeriods) {
		return balance.Div(finalDistributionPeriod)
	}
	return balance.Div(decimal.RequireFromString(distributionPeriods[i]))
}
