package tabular

import (
	"regexp"
	"strings"
)

// Column-name keywords that mark a table as financial. Matched against
// the lowercased header text, so English report headers hit directly.
var financialKeywords = []string{
	"revenue", "sales", "income", "profit", "loss", "earnings",
	"assets", "liabilities", "equity", "cash", "debt",
	"margin", "ratio", "percentage", "growth", "year",
}

var (
	currencyRe = regexp.MustCompile(`[\$¥€£]\s*[\d,.]+`)
	percentRe  = regexp.MustCompile(`\d+\.?\d*\s*%`)

	// Large figures: comma-grouped numbers and numbers carrying a
	// Chinese magnitude unit. The unit characters are non-word runes,
	// so no trailing \b there.
	groupedNumberRe = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})+\b`)
	unitNumberRe    = regexp.MustCompile(`\b\d+\.?\d*[万千百十亿]`)
)

const financialScoreThreshold = 1.0

// DetectFinancial scores header keywords against value patterns sampled
// from the first columns and reports whether the table looks financial.
func DetectFinancial(columns []string, rows [][]string) bool {
	return financialScore(columns, rows) > financialScoreThreshold
}

func financialScore(columns []string, rows [][]string) float64 {
	headerText := strings.ToLower(strings.Join(columns, " "))
	keywordCount := 0
	for _, keyword := range financialKeywords {
		if strings.Contains(headerText, keyword) {
			keywordCount++
		}
	}

	sample := sampleCells(columns, rows)
	currencyMatches := len(currencyRe.FindAllString(sample, -1))
	percentMatches := len(percentRe.FindAllString(sample, -1))
	numberMatches := len(groupedNumberRe.FindAllString(sample, -1)) +
		len(unitNumberRe.FindAllString(sample, -1))

	return float64(keywordCount)*0.4 +
		float64(currencyMatches)*0.3 +
		float64(percentMatches)*0.2 +
		float64(numberMatches)*0.1
}

// sampleCells joins the first three columns of the first five rows;
// that slice is enough to recognize monetary formatting.
func sampleCells(columns []string, rows [][]string) string {
	maxCols := len(columns)
	if maxCols > 3 {
		maxCols = 3
	}
	maxRows := len(rows)
	if maxRows > 5 {
		maxRows = 5
	}

	var cells []string
	for col := 0; col < maxCols; col++ {
		for row := 0; row < maxRows; row++ {
			if col < len(rows[row]) {
				cells = append(cells, rows[row][col])
			}
		}
	}
	return strings.Join(cells, " ")
}
