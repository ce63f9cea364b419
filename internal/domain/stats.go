package domain

// StatsContext - общая конфигурация прохода статистики: один фильтр и одна модель на дерево
type StatsContext struct {
	Filter *RouteFilter
	Model  *RankingModel
}

// NewStatsContext создает контекст с фильтром "все маршруты" и моделью raw
func NewStatsContext() StatsContext {
	return StatsContext{
		Filter: NewRouteFilter(),
		Model:  NewRankingModel(),
	}
}

// InitStats считает общее число маршрутов и первый проход статистики
func (t *Tree) InitStats(sc StatsContext) {
	t.CalculateTotals()
	t.CalculateStats(sc)
}

// CalculateTotals считает число маршрутов в каждом поддереве, фильтр не учитывается
func (t *Tree) CalculateTotals() {
	t.totalAt(t.root)
	t.totalsStale = false
}

func (t *Tree) totalAt(id AreaID) int {
	a := t.areas[id]
	if a.IsLeafParent() {
		a.TotalRoutes = len(a.Routes)
	} else {
		a.TotalRoutes = 0
		for _, child := range a.SubAreas {
			a.TotalRoutes += t.totalAt(child)
		}
	}
	if a.State == StatsUnfilled {
		a.State = StatsTotaled
	}
	return a.TotalRoutes
}

// CalculateStats пересчитывает статистику по фильтру и модели (post-order).
// Общее число маршрутов пересчитывается только если менялась структура дерева.
func (t *Tree) CalculateStats(sc StatsContext) {
	if t.totalsStale {
		t.CalculateTotals()
	}
	t.statsAt(t.root, sc)
}

func (t *Tree) statsAt(id AreaID, sc StatsContext) AreaStats {
	a := t.areas[id]
	stats := newAreaStats()
	if a.IsLeafParent() {
		for _, rid := range a.Routes {
			stats.add(t.routes[rid].contribution(sc))
		}
	} else {
		for _, child := range a.SubAreas {
			stats.add(t.statsAt(child, sc))
		}
	}
	stats.finish()
	a.Stats = stats
	a.State = StatsFiltered
	return stats
}

// CountRoutes считает маршруты поддерева обходом, без кеша TotalRoutes
func (t *Tree) CountRoutes(id AreaID) int {
	a, ok := t.Area(id)
	if !ok {
		return 0
	}
	n := len(a.Routes)
	for _, child := range a.SubAreas {
		n += t.CountRoutes(child)
	}
	return n
}
