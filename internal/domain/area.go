package domain

import "fmt"

// AreaID и RouteID - индексы узлов в арене дерева
type AreaID int
type RouteID int

// NoArea - отсутствующий родитель (корень)
const NoArea AreaID = -1

// LatLon представляет координаты точки
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// StatsState - стадия расчета статистики района
type StatsState int

const (
	StatsUnfilled StatsState = iota // только создан
	StatsTotaled                    // посчитано общее число маршрутов
	StatsFiltered                   // посчитана статистика по фильтру и модели
)

func (s StatsState) String() string {
	switch s {
	case StatsTotaled:
		return "totaled"
	case StatsFiltered:
		return "filtered"
	default:
		return "unfilled"
	}
}

// AreaStats - агрегированная по поддереву статистика, зависящая от фильтра
type AreaStats struct {
	MatchingRoutes int     `json:"matching_routes"`
	Popularity     int     `json:"popularity"`
	Rating         float64 `json:"rating"`
	Score          float64 `json:"score"`
	AvgPopularity  float64 `json:"avg_popularity"`
	AvgRating      float64 `json:"avg_rating"`
	// AvgScore усредняется только по маршрутам с посчитанным score (без Unscored)
	AvgScore       float64 `json:"avg_score"`
	// Unscored - совпавшие маршруты, для которых модель не смогла посчитать score
	Unscored int `json:"unscored"`
	// RouteTypes и Grades считаются по всем маршрутам независимо от фильтра
	RouteTypes map[string]int `json:"route_types"`
	Grades     map[string]int `json:"grades"`
}

func newAreaStats() AreaStats {
	return AreaStats{
		RouteTypes: make(map[string]int),
		Grades:     make(map[string]int),
	}
}

func (s *AreaStats) add(other AreaStats) {
	s.MatchingRoutes += other.MatchingRoutes
	s.Popularity += other.Popularity
	s.Rating += other.Rating
	s.Score += other.Score
	s.Unscored += other.Unscored
	for t, n := range other.RouteTypes {
		s.RouteTypes[t] += n
	}
	for g, n := range other.Grades {
		s.Grades[g] += n
	}
}

// finish округляет суммы и считает средние; при нуле совпадений средние равны 0
func (s *AreaStats) finish() {
	s.Rating = round2(s.Rating)
	s.Score = round2(s.Score)
	if s.MatchingRoutes == 0 {
		s.AvgPopularity, s.AvgRating, s.AvgScore = 0, 0, 0
		return
	}
	n := float64(s.MatchingRoutes)
	s.AvgPopularity = round2(float64(s.Popularity) / n)
	s.AvgRating = round2(s.Rating / n)
	s.AvgScore = 0
	if scored := s.MatchingRoutes - s.Unscored; scored > 0 {
		s.AvgScore = round2(s.Score / float64(scored))
	}
}

// Area - район: либо содержит подрайоны, либо (crag) содержит маршруты, но не то и другое
type Area struct {
	ID          AreaID     `json:"id"`
	Name        string     `json:"name"`
	Parent      AreaID     `json:"parent"`
	SubAreas    []AreaID   `json:"sub_areas,omitempty"`
	Routes      []RouteID  `json:"routes,omitempty"`
	TotalRoutes int        `json:"total_routes"`
	Stats       AreaStats  `json:"stats"`
	State       StatsState `json:"-"`

	coordinates *LatLon
}

// IsLeafParent сообщает, что дети района - маршруты
func (a *Area) IsLeafParent() bool {
	return len(a.Routes) > 0
}

func (a *Area) Coordinates() *LatLon {
	return a.coordinates
}

// SetCoordinates задает координаты один раз, повторные вызовы игнорируются
func (a *Area) SetCoordinates(c LatLon) {
	if a.coordinates == nil {
		a.coordinates = &c
	}
}

func (a *Area) String() string {
	return fmt.Sprintf("%s (%d)", a.Name, a.Stats.MatchingRoutes)
}
