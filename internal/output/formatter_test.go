package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rpgo/pension-engine/internal/calculation"
	"github.com/rpgo/pension-engine/internal/compare"
	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testScenario() domain.ScenarioParameters {
	return domain.ScenarioParameters{
		Name: "base",
		Member: domain.MemberProfile{
			Age: 60, BirthYear: 1965, Group: domain.Group2, HireEra: domain.PreCutoff,
			ServiceYears: dec("30"), AverageSalary: dec("80000"),
		},
		Election: domain.JointSurvivor{Fraction: dec("0.6667"), BeneficiaryAge: 58},
		COLA:     domain.COLAParameters{Rate: dec("0.03"), BaseCap: dec("13000"), PerYearCap: dec("390")},
		SocialSecurity: &domain.SocialSecurityProfile{
			ClaimingAge: 62, BirthYear: 1965, FullBenefit: dec("2400"),
		},
		Horizon: domain.Horizon{StartAge: 60, EndAge: 64},
	}
}

func buildProjectionReport(t *testing.T) *Report {
	t.Helper()
	result, err := calculation.ProjectScenario(testScenario())
	require.NoError(t, err)
	return NewProjectionReport("test", result)
}

func buildComparisonReport(t *testing.T) *Report {
	t.Helper()
	bad := testScenario()
	bad.Name = "broken"
	bad.Horizon.EndAge = 10

	e := compare.New(nil)
	base := testScenario()
	alt := testScenario()
	alt.Name = "full"
	alt.Election = domain.FullAllowance{}

	c, err := e.Compare(context.Background(), base, alt, bad)
	require.NoError(t, err)
	return NewComparisonReport("test", c)
}

func TestConsoleFormatter(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildProjectionReport(t))
	require.NoError(t, err)
	content := string(out)

	assert.Contains(t, content, "PENSION PROJECTION")
	assert.Contains(t, content, "SCENARIO: base")
	assert.Contains(t, content, "$55,200.00")
	assert.Contains(t, content, "joint_survivor, reduction 8.00%")
	assert.Contains(t, content, "Social Security:   $1,680.00/mo from age 62")
	// one ledger row per age 60-64
	assert.Equal(t, 5, strings.Count(content, "\n6"))
}

func TestConsoleFormatter_Comparison(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildComparisonReport(t))
	require.NoError(t, err)
	content := string(out)

	assert.Contains(t, content, "COMPARISON TO BASE (base)")
	assert.Contains(t, content, "RECOMMENDATIONS")
	assert.Contains(t, content, "highest first-year net income of $")
	assert.Contains(t, content, "FAILED broken")
	assert.Contains(t, content, "+$4,224.00")
}

func TestCSVSummarizer(t *testing.T) {
	out, err := CSVSummarizer{}.Format(buildComparisonReport(t))
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus the two successful scenarios")
	assert.Equal(t, "Scenario", records[0][0])
	assert.Equal(t, "base", records[1][0])
	assert.Equal(t, "full", records[2][0])
	assert.Equal(t, "55200.00", records[1][7])
	assert.Equal(t, "60000.00", records[2][7])
}

func TestCSVDetailedExporter(t *testing.T) {
	out, err := CSVDetailedExporter{}.Format(buildProjectionReport(t))
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Equal(t, []string{"base", "0", "60", "55200.00"}, records[1][:4])
	assert.Equal(t, "0.00", records[1][5], "no social security before 62")
	assert.Equal(t, "20160.00", records[3][5])
}

func TestJSONFormatter(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildComparisonReport(t))
	require.NoError(t, err)

	var decoded struct {
		Title      string `json:"title"`
		Comparison struct {
			Base struct {
				Name string `json:"name"`
			} `json:"base"`
			Alternatives []struct {
				Name  string `json:"name"`
				Error string `json:"error"`
			} `json:"alternatives"`
			Recommendations []compare.Recommendation `json:"recommendations"`
		} `json:"comparison"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "Pension Scenario Comparison", decoded.Title)
	assert.Equal(t, "base", decoded.Comparison.Base.Name)
	require.Len(t, decoded.Comparison.Alternatives, 2)
	assert.NotEmpty(t, decoded.Comparison.Alternatives[1].Error)
	assert.NotEmpty(t, decoded.Comparison.Recommendations)
}

func TestHTMLFormatter(t *testing.T) {
	out, err := HTMLFormatter{}.Format(buildComparisonReport(t))
	require.NoError(t, err)
	content := string(out)

	assert.True(t, strings.HasPrefix(content, "<!DOCTYPE html>"))
	assert.Contains(t, content, "<h2>base</h2>")
	assert.Contains(t, content, "Comparison to base")
	assert.Contains(t, content, "broken failed")
}

func TestGetFormatterByName(t *testing.T) {
	for _, name := range []string{"console", "CSV", "json-pretty", "csv-detailed", "html", "", "table"} {
		f, err := GetFormatterByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	_, err := GetFormatterByName("pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.Contains(t, err.Error(), "detailed-csv")
}

func TestAvailableFormatterNames(t *testing.T) {
	assert.Equal(t, []string{"console", "csv", "detailed-csv", "html", "json"}, AvailableFormatterNames())
	assert.NotContains(t, AvailableFormatAliases(), "")
}

func TestWriteFormatted(t *testing.T) {
	dir := t.TempDir()
	name, err := WriteFormatted(CSVSummarizer{}, buildProjectionReport(t), dir)
	require.NoError(t, err)
	assert.Equal(t, ".csv", filepath.Ext(name))

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Scenario,"))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSONFormatter{}, buildProjectionReport(t)))
	assert.True(t, json.Valid(buf.Bytes()))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "$1,234.57", FormatCurrency(dec("1234.567")))
	assert.Equal(t, "8.25%", FormatPercentage(dec("0.0825")))
	assert.Equal(t, "+$10.00", FormatSigned(dec("10")))
	assert.Equal(t, "-$10.00", FormatSigned(dec("-10")))
	assert.Equal(t, "$0.00", FormatSigned(decimal.Zero))
}

func TestRecommendationDetail(t *testing.T) {
	testCases := []struct {
		rec  compare.Recommendation
		want string
	}{
		{compare.Recommendation{Category: compare.CategoryIncome, Value: dec("60000")}, "highest first-year net income of $60,000.00"},
		{compare.Recommendation{Category: compare.CategoryRisk, Value: dec("42.5")}, "lowest risk score of 42.50"},
		{compare.Recommendation{Category: compare.CategorySurvivor, Value: dec("36801.84")}, "largest survivor pension of $36,801.84 a year"},
	}
	for _, tc := range testCases {
		t.Run(tc.rec.Category, func(t *testing.T) {
			assert.Equal(t, tc.want, RecommendationDetail(tc.rec))
		})
	}
}
