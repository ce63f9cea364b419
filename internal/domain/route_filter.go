package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Типы маршрутов, встречающиеся в выгрузках
const (
	RouteTypeTrad    = "Trad"
	RouteTypeSport   = "Sport"
	RouteTypeTopRope = "Top Rope"
	RouteTypeAid     = "Aid"
	RouteTypeAlpine  = "Alpine"
	RouteTypeBoulder = "Boulder"
)

// RouteFilter описывает, какие маршруты учитываются в статистике.
// Настройки не валидируются: lower > upper допустимо и просто ничего не пропускает.
type RouteFilter struct {
	lowerGrade Grade
	upperGrade Grade
	minLength  int
	minPitches int
	// nil - принимаются все типы; пустое множество не принимает ничего
	routeTypes map[string]struct{}
}

// NewRouteFilter создает фильтр, пропускающий все маршруты
func NewRouteFilter() *RouteFilter {
	return &RouteFilter{
		lowerGrade: LowestGrade(),
		upperGrade: HighestGrade(),
	}
}

func (f *RouteFilter) LowerGrade() Grade { return f.lowerGrade }
func (f *RouteFilter) UpperGrade() Grade { return f.upperGrade }
func (f *RouteFilter) MinLength() int    { return f.minLength }
func (f *RouteFilter) MinPitches() int   { return f.minPitches }

// RouteTypes возвращает принимаемые типы по алфавиту; nil означает "все типы"
func (f *RouteFilter) RouteTypes() []string {
	if f.routeTypes == nil {
		return nil
	}
	types := make([]string, 0, len(f.routeTypes))
	for t := range f.routeTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func (f *RouteFilter) SetLowerGrade(grade string) error {
	g, err := ParseGrade(grade)
	if err != nil {
		return err
	}
	f.lowerGrade = g
	return nil
}

func (f *RouteFilter) SetUpperGrade(grade string) error {
	g, err := ParseGrade(grade)
	if err != nil {
		return err
	}
	f.upperGrade = g
	return nil
}

func (f *RouteFilter) SetMinLength(length int)   { f.minLength = length }
func (f *RouteFilter) SetMinPitches(pitches int) { f.minPitches = pitches }

// SetRouteTypes задает принимаемые типы; nil возвращает фильтр к "все типы"
func (f *RouteFilter) SetRouteTypes(types []string) {
	if types == nil {
		f.routeTypes = nil
		return
	}
	f.routeTypes = make(map[string]struct{}, len(types))
	for _, t := range types {
		f.routeTypes[t] = struct{}{}
	}
}

// IsMatch проверяет питчи, длину, диапазон категорий и хотя бы один общий тип
func (f *RouteFilter) IsMatch(route *Route) bool {
	if route.Pitches < f.minPitches || route.Length < f.minLength {
		return false
	}
	if !route.Grade.IsInRange(f.lowerGrade, f.upperGrade) {
		return false
	}
	return f.acceptsTypes(route.RouteTypes)
}

func (f *RouteFilter) acceptsTypes(types []string) bool {
	if f.routeTypes == nil {
		return true
	}
	for _, t := range types {
		if _, ok := f.routeTypes[t]; ok {
			return true
		}
	}
	return false
}

// Clone возвращает независимую копию фильтра
func (f *RouteFilter) Clone() *RouteFilter {
	cp := *f
	if f.routeTypes != nil {
		cp.routeTypes = make(map[string]struct{}, len(f.routeTypes))
		for t := range f.routeTypes {
			cp.routeTypes[t] = struct{}{}
		}
	}
	return &cp
}

func (f *RouteFilter) String() string {
	types := "all"
	if f.routeTypes != nil {
		types = strings.Join(f.RouteTypes(), ", ")
	}
	return fmt.Sprintf("grades %s..%s, length >= %d, pitches >= %d, types: %s",
		f.lowerGrade, f.upperGrade, f.minLength, f.minPitches, types)
}
