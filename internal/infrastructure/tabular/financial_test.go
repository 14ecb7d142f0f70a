package tabular

import (
	"math"
	"testing"
)

func TestDetectFinancial(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		rows    [][]string
		want    bool
	}{
		{
			name:    "english report headers",
			columns: []string{"Revenue", "Net Profit", "Margin", "Growth"},
			rows:    [][]string{{"2023", "100", "10", "5"}},
			want:    true,
		},
		{
			name:    "plain chinese prose",
			columns: []string{"项目", "说明"},
			rows:    [][]string{{"背景", "无数值内容"}},
			want:    false,
		},
		{
			name:    "currency heavy values",
			columns: []string{"项目", "金额"},
			rows: [][]string{
				{"a", "¥ 1,234,567"},
				{"b", "¥ 2,345,678"},
				{"c", "¥ 3,456,789"},
				{"d", "¥ 4,567,890"},
				{"e", "¥ 5,678,901"},
			},
			want: true,
		},
		{
			name:    "score exactly at threshold stays out",
			columns: []string{"Revenue", "Growth"},
			rows:    [][]string{{"text", "5%"}},
			want:    false,
		},
		{
			name:    "score just above threshold",
			columns: []string{"Revenue", "Growth"},
			rows: [][]string{
				{"a", "5%"},
				{"b", "7%"},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFinancial(tt.columns, tt.rows); got != tt.want {
				t.Fatalf("DetectFinancial() = %v, want %v (score %.2f)",
					got, tt.want, financialScore(tt.columns, tt.rows))
			}
		})
	}
}

func TestFinancialScoreSamplesFirstColumnsAndRows(t *testing.T) {
	columns := []string{"a", "b", "c", "d"}

	beyondCols := [][]string{{"x", "y", "z", "¥ 9,999,999"}}
	if score := financialScore(columns, beyondCols); score != 0 {
		t.Fatalf("fourth column leaked into sample, score = %.2f", score)
	}

	inCols := [][]string{{"¥ 9,999,999", "y", "z", "x"}}
	if score := financialScore(columns, inCols); math.Abs(score-0.4) > 1e-9 {
		t.Fatalf("score = %.2f, want 0.4 (one currency, one grouped number)", score)
	}

	beyondRows := [][]string{
		{"x"}, {"x"}, {"x"}, {"x"}, {"x"},
		{"¥ 9,999,999"},
	}
	if score := financialScore([]string{"a"}, beyondRows); score != 0 {
		t.Fatalf("sixth row leaked into sample, score = %.2f", score)
	}
}

func TestFinancialScoreCountsChineseUnitNumbers(t *testing.T) {
	score := financialScore([]string{"项目"}, [][]string{
		{"收入120万"},
		{"利润3.5亿"},
	})
	if math.Abs(score-0.2) > 1e-9 {
		t.Fatalf("score = %.2f, want 0.2 for two unit-suffixed numbers", score)
	}
}
