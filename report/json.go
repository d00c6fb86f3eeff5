package report

import (
	"io"
	"math"

	"github.com/goccy/go-json"

	"github.com/nao1215/moviestat/domain/model"
)

type movieJSON struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Director    string   `json:"director,omitempty"`
	Genres      []string `json:"genres"`
	Cast        []string `json:"cast"`
	ReleaseDate string   `json:"release_date"`
	ReleaseYear int      `json:"release_year"`
	Budget      int64    `json:"budget"`
	Revenue     int64    `json:"revenue"`
	Runtime     *int64   `json:"runtime"`
	Profit      int64    `json:"profit"`
}

type extremesJSON struct {
	Column string    `json:"column"`
	Max    movieJSON `json:"max"`
	MaxVal float64   `json:"max_value"`
	Min    movieJSON `json:"min"`
	MinVal float64   `json:"min_value"`
}

// matrixJSON encodes undefined cells as null.
type matrixJSON struct {
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

type analysisJSON struct {
	RunID            string               `json:"run_id,omitempty"`
	Source           string               `json:"source,omitempty"`
	MovieCount       int                  `json:"movie_count"`
	Extremes         []extremesJSON       `json:"extremes"`
	Correlations     []model.Correlation  `json:"correlations"`
	ProfitThreshold  int64                `json:"profit_threshold"`
	ProfitableCount  int                  `json:"profitable_count"`
	ProfitableGenres []model.TokenCount   `json:"profitable_genres"`
	ProfitableCast   []model.TokenCount   `json:"profitable_cast"`
	ProfitableAvg    model.SubsetAverages `json:"profitable_averages"`
	AverageRuntime   float64              `json:"average_runtime"`
	Runtime          model.Distribution   `json:"runtime"`
	ProfitByYear     []model.GroupTotal   `json:"profit_by_year"`
	MostProfitable   model.GroupTotal     `json:"most_profitable_year"`
	GenreByYear      []model.GroupMode    `json:"genre_by_year"`
	Matrix           matrixJSON           `json:"correlation_matrix"`
}

// WriteJSON writes the analysis as indented JSON. Undefined correlations are null.
func WriteJSON(w io.Writer, a *model.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(a))
}

func toJSON(a *model.Analysis) analysisJSON {
	out := analysisJSON{
		RunID:            a.RunID,
		Source:           a.Source,
		MovieCount:       a.MovieCount,
		Extremes:         make([]extremesJSON, len(a.Extremes)),
		Correlations:     a.Correlations,
		ProfitThreshold:  a.ProfitThreshold,
		ProfitableCount:  a.ProfitableCount,
		ProfitableGenres: a.ProfitableGenres,
		ProfitableCast:   a.ProfitableCast,
		ProfitableAvg:    a.ProfitableAvg,
		AverageRuntime:   a.AverageRuntime,
		Runtime:          a.Runtime,
		ProfitByYear:     a.ProfitByYear,
		MostProfitable:   a.MostProfitable,
		GenreByYear:      a.GenreByYear,
		Matrix: matrixJSON{
			Columns: a.Matrix.Columns,
			Values:  make([][]*float64, len(a.Matrix.Values)),
		},
	}
	for i, e := range a.Extremes {
		out.Extremes[i] = extremesJSON{
			Column: e.Column,
			Max:    toMovieJSON(e.Max),
			MaxVal: e.MaxVal,
			Min:    toMovieJSON(e.Min),
			MinVal: e.MinVal,
		}
	}
	for i, row := range a.Matrix.Values {
		out.Matrix.Values[i] = make([]*float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			out.Matrix.Values[i][j] = &v
		}
	}
	return out
}

func toMovieJSON(m model.Movie) movieJSON {
	out := movieJSON{
		ID:          m.ID,
		Title:       m.Title,
		Director:    m.Director,
		Genres:      m.Genres,
		Cast:        m.Cast,
		ReleaseDate: m.ReleaseDate.Format(model.DateLayout),
		ReleaseYear: m.ReleaseYear,
		Budget:      m.Budget,
		Revenue:     m.Revenue,
		Profit:      m.Profit,
	}
	if m.Runtime.Valid {
		runtime := m.Runtime.Int64
		out.Runtime = &runtime
	}
	return out
}
