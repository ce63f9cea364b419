package domain

import (
	"sort"
	"strings"

	apperrors "github.com/rock-radar/internal/pkg/errors"
)

// fieldKind определяет направление сортировки: строки и категории по возрастанию,
// числа по убыванию (для метрик маршрутов "больше - лучше")
type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
	kindGrade
)

// AreaField - поле района, по которому можно сортировать или которое можно показывать
type AreaField int

const (
	AreaName AreaField = iota
	AreaTotalRoutes
	AreaMatchingRoutes
	AreaScore
	AreaRating
	AreaPopularity
	AreaAvgScore
	AreaAvgRating
	AreaAvgPopularity
)

var areaFieldNames = []string{
	AreaName:           "name",
	AreaTotalRoutes:    "total routes",
	AreaMatchingRoutes: "matching routes",
	AreaScore:          "score",
	AreaRating:         "rating",
	AreaPopularity:     "popularity",
	AreaAvgScore:       "average score",
	AreaAvgRating:      "average rating",
	AreaAvgPopularity:  "average popularity",
}

// RouteField - поле маршрута для сортировки и отображения
type RouteField int

const (
	RouteName RouteField = iota
	RouteGrade
	RouteRating
	RoutePopularity
	RouteScore
	RouteLength
	RoutePitches
)

var routeFieldNames = []string{
	RouteName:       "name",
	RouteGrade:      "grade",
	RouteRating:     "rating",
	RoutePopularity: "popularity",
	RouteScore:      "score",
	RouteLength:     "length",
	RoutePitches:    "pitches",
}

func normalizeFieldName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ParseAreaField разбирает имя поля района ("Matching Routes", "matching_routes")
func ParseAreaField(name string) (AreaField, error) {
	n := normalizeFieldName(name)
	for i, fieldName := range areaFieldNames {
		if fieldName == n {
			return AreaField(i), nil
		}
	}
	return AreaName, apperrors.Newf(apperrors.ErrConfig, "unknown area field %q", name)
}

// ParseRouteField разбирает имя поля маршрута
func ParseRouteField(name string) (RouteField, error) {
	n := normalizeFieldName(name)
	for i, fieldName := range routeFieldNames {
		if fieldName == n {
			return RouteField(i), nil
		}
	}
	return RouteName, apperrors.Newf(apperrors.ErrConfig, "unknown route field %q", name)
}

func (f AreaField) String() string  { return areaFieldNames[f] }
func (f RouteField) String() string { return routeFieldNames[f] }

func (f AreaField) MarshalText() ([]byte, error)  { return []byte(f.String()), nil }
func (f RouteField) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *AreaField) UnmarshalText(text []byte) error {
	parsed, err := ParseAreaField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (f *RouteField) UnmarshalText(text []byte) error {
	parsed, err := ParseRouteField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// AreaFieldTitles возвращает названия полей района для списков выбора
func AreaFieldTitles() []string {
	titles := make([]string, len(areaFieldNames))
	for i, n := range areaFieldNames {
		titles[i] = titleCase(n)
	}
	return titles
}

// RouteFieldTitles возвращает названия полей маршрута для списков выбора
func RouteFieldTitles() []string {
	titles := make([]string, len(routeFieldNames))
	for i, n := range routeFieldNames {
		titles[i] = titleCase(n)
	}
	return titles
}

func (f AreaField) kind() fieldKind {
	if f == AreaName {
		return kindString
	}
	return kindNumber
}

func (f RouteField) kind() fieldKind {
	switch f {
	case RouteName:
		return kindString
	case RouteGrade:
		return kindGrade
	default:
		return kindNumber
	}
}

// Value возвращает значение поля района (string или float64)
func (f AreaField) Value(a *Area) interface{} {
	switch f {
	case AreaName:
		return a.Name
	case AreaTotalRoutes:
		return float64(a.TotalRoutes)
	case AreaMatchingRoutes:
		return float64(a.Stats.MatchingRoutes)
	case AreaScore:
		return a.Stats.Score
	case AreaRating:
		return a.Stats.Rating
	case AreaPopularity:
		return float64(a.Stats.Popularity)
	case AreaAvgScore:
		return a.Stats.AvgScore
	case AreaAvgRating:
		return a.Stats.AvgRating
	case AreaAvgPopularity:
		return a.Stats.AvgPopularity
	}
	return nil
}

// Value возвращает значение поля маршрута (string или float64)
func (f RouteField) Value(r *Route) interface{} {
	switch f {
	case RouteName:
		return r.Name
	case RouteGrade:
		return r.Grade.String()
	case RouteRating:
		return r.Rating
	case RoutePopularity:
		return float64(r.Popularity)
	case RouteScore:
		return r.Score
	case RouteLength:
		return float64(r.Length)
	case RoutePitches:
		return float64(r.Pitches)
	}
	return nil
}

// compareAreas < 0, если a должен идти раньше b
func (f AreaField) compare(a, b *Area) int {
	if f.kind() == kindString {
		return strings.Compare(a.Name, b.Name)
	}
	return compareDesc(f.Value(a).(float64), f.Value(b).(float64))
}

func (f RouteField) compare(a, b *Route) int {
	switch f.kind() {
	case kindString:
		return strings.Compare(a.Name, b.Name)
	case kindGrade:
		return a.Grade.Compare(b.Grade)
	default:
		return compareDesc(f.Value(a).(float64), f.Value(b).(float64))
	}
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

// SortKeys - первичный и вторичный ключи для районов и для маршрутов
type SortKeys struct {
	NodePrimary   AreaField  `json:"node_primary"`
	NodeSecondary AreaField  `json:"node_secondary"`
	LeafPrimary   RouteField `json:"leaf_primary"`
	LeafSecondary RouteField `json:"leaf_secondary"`
}

// DefaultSortKeys - сортировка по имени
func DefaultSortKeys() SortKeys {
	return SortKeys{
		NodePrimary:   AreaName,
		NodeSecondary: AreaName,
		LeafPrimary:   RouteName,
		LeafSecondary: RouteName,
	}
}

// ParseSortKeys разбирает имена ключей; пустой вторичный ключ равен первичному
func ParseSortKeys(nodePrimary, nodeSecondary, leafPrimary, leafSecondary string) (SortKeys, error) {
	var keys SortKeys
	var err error

	if keys.NodePrimary, err = ParseAreaField(nodePrimary); err != nil {
		return SortKeys{}, err
	}
	keys.NodeSecondary = keys.NodePrimary
	if nodeSecondary != "" {
		if keys.NodeSecondary, err = ParseAreaField(nodeSecondary); err != nil {
			return SortKeys{}, err
		}
	}

	if keys.LeafPrimary, err = ParseRouteField(leafPrimary); err != nil {
		return SortKeys{}, err
	}
	keys.LeafSecondary = keys.LeafPrimary
	if leafSecondary != "" {
		if keys.LeafSecondary, err = ParseRouteField(leafSecondary); err != nil {
			return SortKeys{}, err
		}
	}
	return keys, nil
}

// Sort рекурсивно сортирует дерево в глубину (post-order).
// Рекурсия останавливается на crag: маршруты сортируются, но внутрь них не спускаемся.
func (t *Tree) Sort(keys SortKeys) {
	t.sortAt(t.root, keys)
}

func (t *Tree) sortAt(id AreaID, keys SortKeys) {
	a := t.areas[id]
	if a.IsLeafParent() {
		sort.SliceStable(a.Routes, func(i, j int) bool {
			ri, rj := t.routes[a.Routes[i]], t.routes[a.Routes[j]]
			if c := keys.LeafPrimary.compare(ri, rj); c != 0 {
				return c < 0
			}
			return keys.LeafSecondary.compare(ri, rj) < 0
		})
		return
	}

	for _, child := range a.SubAreas {
		t.sortAt(child, keys)
	}
	sort.SliceStable(a.SubAreas, func(i, j int) bool {
		ai, aj := t.areas[a.SubAreas[i]], t.areas[a.SubAreas[j]]
		if c := keys.NodePrimary.compare(ai, aj); c != 0 {
			return c < 0
		}
		return keys.NodeSecondary.compare(ai, aj) < 0
	})
}
