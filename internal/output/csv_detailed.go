package output

import (
	"bytes"
	"encoding/csv"
)

// CSVDetailedExporter writes one row per scenario and projection year.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string { return "detailed-csv" }

func (c CSVDetailedExporter) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Scenario", "Year", "Age", "Pension", "COLAIncrease", "SocialSecurity", "AccountWithdrawal",
		"PartTimeIncome", "RentalIncome", "TotalAnnual", "TaxableSocialSecurity", "FederalTax", "StateTax",
		"NetIncome", "AccountBalance", "RMDApplied"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range report.Scenarios() {
		for _, yr := range r.Rows {
			row := []string{
				r.Name,
				intToString(yr.YearIndex),
				intToString(yr.Age),
				yr.Pension.StringFixed(2),
				yr.COLAIncrease.StringFixed(2),
				yr.SocialSecurity.StringFixed(2),
				yr.AccountWithdrawal.StringFixed(2),
				yr.PartTimeIncome.StringFixed(2),
				yr.RentalIncome.StringFixed(2),
				yr.TotalAnnual.StringFixed(2),
				yr.TaxableSocialSecurity.StringFixed(2),
				yr.FederalTax.StringFixed(2),
				yr.StateTax.StringFixed(2),
				yr.NetIncome.StringFixed(2),
				yr.AccountBalance.StringFixed(2),
				boolToString(yr.RMDApplied),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
