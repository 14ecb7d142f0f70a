package domain

// SynonymEntry maps one canonical financial term to the aliases appended
// during query expansion. Entry order is preserved so expansion output is
// deterministic.
type SynonymEntry struct {
	Term     string   `json:"term" yaml:"term"`
	Synonyms []string `json:"synonyms" yaml:"synonyms"`
}

// Vocabulary is the lexical configuration behind query expansion, strategy
// selection, and metric scoring. It is loaded once at startup and treated
// as immutable afterwards.
type Vocabulary struct {
	MetricTerms      []string       `json:"metric_terms" yaml:"metric_terms"`
	Synonyms         []SynonymEntry `json:"synonyms" yaml:"synonyms"`
	NumericKeywords  []string       `json:"numeric_keywords" yaml:"numeric_keywords"`
	SemanticKeywords []string       `json:"semantic_keywords" yaml:"semantic_keywords"`
}

// DefaultVocabulary returns the built-in tables for Chinese annual-report
// corpora.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		MetricTerms: []string{
			"净利润", "ROE", "ROA", "负债率", "资产负债率", "流动比率",
			"营业收入", "营业利润", "毛利率", "净利率", "资产周转率",
			"现金流", "股东权益", "总资产", "总负债", "每股收益",
			"净资产", "流动资产", "非流动资产", "流动负债", "非流动负债",
			"营业成本", "销售费用", "管理费用", "财务费用", "研发费用",
		},
		Synonyms: []SynonymEntry{
			{Term: "净利润", Synonyms: []string{"净利润", "盈余", "收益", "Profit", "Earnings", "净利"}},
			{Term: "ROE", Synonyms: []string{"ROE", "净资产收益率", "权益回报率", "Return on Equity"}},
			{Term: "营业收入", Synonyms: []string{"营业收入", "营收", "收入", "Revenue", "Sales"}},
			{Term: "资产", Synonyms: []string{"资产", "Assets", "总资产", "净资产"}},
			{Term: "负债", Synonyms: []string{"负债", "Liabilities", "总负债", "债务"}},
			{Term: "现金流", Synonyms: []string{"现金流", "现金流量", "Cash Flow", "经营现金流"}},
			{Term: "毛利率", Synonyms: []string{"毛利率", "Gross Margin", "毛利润率"}},
			{Term: "净利率", Synonyms: []string{"净利率", "Net Margin", "净利润率"}},
		},
		NumericKeywords:  []string{"增长率", "变化幅度", "同比", "环比", "数据", "数值", "金额", "比例"},
		SemanticKeywords: []string{"表现如何", "趋势说明", "分析", "评价", "情况", "概述"},
	}
}
