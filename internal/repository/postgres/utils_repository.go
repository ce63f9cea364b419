package postgres

import "database/sql"

const (
	// insertBatchSize - количество строк в одном INSERT при загрузке региона
	insertBatchSize = 500
)

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
