package dto

// FilterRequest - изменение фильтра маршрутов. Отсутствующие поля не меняются.
// route_types: null - без изменений, [] - ни одного типа; all_route_types=true - все типы.
type FilterRequest struct {
	LowerGrade    *string  `json:"lower_grade,omitempty"`
	UpperGrade    *string  `json:"upper_grade,omitempty"`
	MinLength     *int     `json:"min_length,omitempty" validate:"omitempty,min=0"`
	MinPitches    *int     `json:"min_pitches,omitempty" validate:"omitempty,min=0"`
	RouteTypes    []string `json:"route_types,omitempty" validate:"omitempty,dive,required"`
	AllRouteTypes bool     `json:"all_route_types,omitempty"`
}

// ModelRequest - выбор модели ранжирования
type ModelRequest struct {
	Model  string    `json:"model" validate:"required"`
	Params []float64 `json:"params,omitempty" validate:"max=2"`
}

// SortRequest - ключи сортировки; пустой вторичный ключ равен первичному
type SortRequest struct {
	NodePrimary   string `json:"node_primary" validate:"required"`
	NodeSecondary string `json:"node_secondary,omitempty"`
	LeafPrimary   string `json:"leaf_primary" validate:"required"`
	LeafSecondary string `json:"leaf_secondary,omitempty"`
}

// MetricsRequest - поля, значения которых показываются рядом с детьми узла
type MetricsRequest struct {
	AreaMetric  string `json:"area_metric,omitempty"`
	RouteMetric string `json:"route_metric,omitempty"`
}

// MoveAreaRequest - перенос района под другого родителя
type MoveAreaRequest struct {
	ParentID *int `json:"parent_id" validate:"required,min=0"`
}

// ImportRequest - загрузка региона в дерево
type ImportRequest struct {
	Region string `json:"region" validate:"required"`
	Async  bool   `json:"async,omitempty"`
}
