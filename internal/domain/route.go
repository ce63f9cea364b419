package domain

import "fmt"

// Route - отдельный маршрут, лист дерева
type Route struct {
	ID         RouteID  `json:"id"`
	SourceID   string   `json:"source_id"`
	Name       string   `json:"name"`
	URL        string   `json:"url"`
	Grade      Grade    `json:"grade"`
	RouteTypes []string `json:"route_types"`
	Pitches    int      `json:"pitches"`
	Length     int      `json:"length"`
	Rating     float64  `json:"rating"`
	Popularity int      `json:"popularity"`
	Crag       AreaID   `json:"crag"`

	// результат последнего прохода статистики
	Matches bool    `json:"matches"`
	Scored  bool    `json:"scored"`
	Score   float64 `json:"score"`
}

// NewRoute создает маршрут, разбирая категорию сложности
func NewRoute(
	sourceID, name, url, grade string,
	routeTypes []string,
	pitches, length int,
	rating float64,
	popularity int,
) (*Route, error) {
	g, err := ParseGrade(grade)
	if err != nil {
		return nil, err
	}
	return &Route{
		ID:         -1,
		SourceID:   sourceID,
		Name:       name,
		URL:        url,
		Grade:      g,
		RouteTypes: routeTypes,
		Pitches:    pitches,
		Length:     length,
		Rating:     rating,
		Popularity: popularity,
		Crag:       NoArea,
	}, nil
}

// Label - отображаемое имя: "Название (5.10a)"
func (r *Route) Label() string {
	return fmt.Sprintf("%s (%s)", r.Name, r.Grade)
}

// contribution считает вклад маршрута в статистику района и кеширует результат прохода
func (r *Route) contribution(sc StatsContext) AreaStats {
	stats := newAreaStats()
	for _, t := range r.RouteTypes {
		stats.RouteTypes[t]++
	}
	stats.Grades[r.Grade.String()]++

	r.Matches = sc.Filter.IsMatch(r)
	r.Scored = false
	r.Score = 0
	if !r.Matches {
		return stats
	}

	stats.MatchingRoutes = 1
	stats.Popularity = r.Popularity
	stats.Rating = r.Rating

	score, err := sc.Model.GetScore(r.Popularity, r.Rating)
	if err != nil {
		stats.Unscored = 1
		return stats
	}
	r.Scored = true
	r.Score = score
	stats.Score = score
	return stats
}
