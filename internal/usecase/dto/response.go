package dto

import (
	"github.com/rock-radar/internal/domain"
)

// AreaView - район с детьми и значениями выбранной метрики
type AreaView struct {
	ID          int              `json:"id"`
	Name        string           `json:"name"`
	Path        []string         `json:"path"`
	ParentID    *int             `json:"parent_id,omitempty"`
	IsCrag      bool             `json:"is_crag"`
	TotalRoutes int              `json:"total_routes"`
	Stats       domain.AreaStats `json:"stats"`
	Coordinates *domain.LatLon   `json:"coordinates,omitempty"`
	Metric      string           `json:"metric"`
	SubAreas    []AreaChild      `json:"sub_areas,omitempty"`
	Routes      []RouteChild     `json:"routes,omitempty"`
}

// AreaChild - подрайон в списке детей
type AreaChild struct {
	ID             int         `json:"id"`
	Name           string      `json:"name"`
	TotalRoutes    int         `json:"total_routes"`
	MatchingRoutes int         `json:"matching_routes"`
	Value          interface{} `json:"value"`
}

// RouteChild - маршрут в списке детей crag
type RouteChild struct {
	ID      int         `json:"id"`
	Label   string      `json:"label"`
	Grade   string      `json:"grade"`
	Matches bool        `json:"matches"`
	Value   interface{} `json:"value"`
}

// RouteView - подробности маршрута
type RouteView struct {
	ID         int      `json:"id"`
	SourceID   string   `json:"source_id"`
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	URL        string   `json:"url,omitempty"`
	Grade      string   `json:"grade"`
	RouteTypes []string `json:"route_types"`
	Pitches    int      `json:"pitches"`
	Length     int      `json:"length"`
	Rating     float64  `json:"rating"`
	Popularity int      `json:"popularity"`
	Matches    bool     `json:"matches"`
	Scored     bool     `json:"scored"`
	Score      float64  `json:"score"`
	CragID     int      `json:"crag_id"`
	Path       []string `json:"path"`
}

// FilterView - текущий фильтр; route_types == null означает все типы
type FilterView struct {
	LowerGrade string   `json:"lower_grade"`
	UpperGrade string   `json:"upper_grade"`
	MinLength  int      `json:"min_length"`
	MinPitches int      `json:"min_pitches"`
	RouteTypes []string `json:"route_types"`
}

// ModelView - текущая модель ранжирования
type ModelView struct {
	Model            string  `json:"model"`
	TargetPopularity float64 `json:"target_popularity"`
	Trust            float64 `json:"trust"`
}

// SettingsResponse - все настройки ранжирования
type SettingsResponse struct {
	Filter      FilterView      `json:"filter"`
	Model       ModelView       `json:"model"`
	Sort        domain.SortKeys `json:"sort"`
	AreaMetric  string          `json:"area_metric"`
	RouteMetric string          `json:"route_metric"`
	Snapshot    string          `json:"snapshot"`
}

// RefreshResponse - результат пересчета: настройки и корень одного snapshot
type RefreshResponse struct {
	Settings *SettingsResponse `json:"settings"`
	Root     *AreaView         `json:"root"`
}

// OptionsResponse - допустимые значения настроек
type OptionsResponse struct {
	NodeSortKeys []string `json:"node_sort_keys"`
	LeafSortKeys []string `json:"leaf_sort_keys"`
	Models       []string `json:"models"`
	RouteTypes   []string `json:"route_types"`
	Grades       []string `json:"grades"`
}

// RegionView - регион источника
type RegionView struct {
	Name   string `json:"name"`
	Routes int    `json:"routes"`
	Loaded bool   `json:"loaded"`
}

// ImportResponse - результат загрузки региона
type ImportResponse struct {
	Region      string `json:"region"`
	Queued      bool   `json:"queued"`
	EventID     string `json:"event_id,omitempty"`
	Routes      int    `json:"routes"`
	Skipped     int    `json:"skipped"`
	TotalRoutes int    `json:"total_routes"`
}
