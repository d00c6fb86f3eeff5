package model

// Extremes holds the rows with the largest and smallest value of a numeric column.
type Extremes struct {
	Column string  `json:"column"`
	Max    Movie   `json:"max"`
	MaxVal float64 `json:"max_value"`
	Min    Movie   `json:"min"`
	MinVal float64 `json:"min_value"`
}

// ProfitableMovie is one entry of the profitable subset, re-indexed from 1.
type ProfitableMovie struct {
	Index int   `json:"index"`
	Movie Movie `json:"movie"`
}

// TokenCount is the number of occurrences of a genre, cast member or other token.
type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// GroupTotal is the sum of a numeric column for one group key.
type GroupTotal struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// GroupMode is the most frequent category token within one group.
type GroupMode struct {
	Key      string `json:"key"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Distribution summarises a numeric column.
type Distribution struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// IQR returns the interquartile range.
func (d Distribution) IQR() float64 {
	return d.Q3 - d.Q1
}

// CorrMatrix holds a symmetric Pearson correlation matrix. Undefined cells are NaN.
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"-"`
}

// At returns the coefficient for the named pair.
func (cm CorrMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, c := range cm.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return cm.Values[i][j], true
}

// Correlation is a named pairwise coefficient. R is nil when undefined.
type Correlation struct {
	A    string   `json:"a"`
	B    string   `json:"b"`
	R    *float64 `json:"r"`
	Note string   `json:"note,omitempty"`
}

// SubsetAverages are the mean budget, revenue and runtime of the profitable subset.
// Runtime is nil when no movie of the subset has a runtime; RuntimeNote then
// says why.
type SubsetAverages struct {
	Budget      float64  `json:"budget"`
	Revenue     float64  `json:"revenue"`
	Runtime     *float64 `json:"runtime"`
	RuntimeNote string   `json:"runtime_note,omitempty"`
}

// Analysis is the full set of results a report is rendered from.
type Analysis struct {
	RunID            string            `json:"run_id,omitempty"`
	Source           string            `json:"source,omitempty"`
	MovieCount       int               `json:"movie_count"`
	Extremes         []Extremes        `json:"extremes"`
	Correlations     []Correlation     `json:"correlations"`
	ProfitThreshold  int64             `json:"profit_threshold"`
	Profitable       []ProfitableMovie `json:"-"`
	ProfitableCount  int               `json:"profitable_count"`
	ProfitableGenres []TokenCount      `json:"profitable_genres"`
	ProfitableCast   []TokenCount      `json:"profitable_cast"`
	ProfitableAvg    SubsetAverages    `json:"profitable_averages"`
	AverageRuntime   float64           `json:"average_runtime"`
	Runtime          Distribution      `json:"runtime"`
	ProfitByYear     []GroupTotal      `json:"profit_by_year"`
	MostProfitable   GroupTotal        `json:"most_profitable_year"`
	GenreByYear      []GroupMode       `json:"genre_by_year"`
	Matrix           CorrMatrix        `json:"correlation_matrix"`
}

// ExtremesFor returns the extremes computed for a column.
func (a *Analysis) ExtremesFor(column string) (Extremes, bool) {
	for _, e := range a.Extremes {
		if e.Column == column {
			return e, true
		}
	}
	return Extremes{}, false
}
