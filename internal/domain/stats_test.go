package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateStats_RawModel(t *testing.T) {
	tree := buildFixtureTree(t)
	tree.InitStats(NewStatsContext())

	root := tree.Root()
	assert.Equal(t, 6, root.TotalRoutes)
	assert.Equal(t, 6, root.Stats.MatchingRoutes)
	assert.Equal(t, 390, root.Stats.Popularity)
	assert.InDelta(t, 16.3, root.Stats.Rating, 1e-9)
	assert.InDelta(t, 1204.0, root.Stats.Score, 1e-9)

	jt := mustFind(t, tree, "USA", "California", "Joshua Tree")
	assert.Equal(t, 3, jt.Stats.MatchingRoutes)
	assert.Equal(t, 160, jt.Stats.Popularity)
	assert.InDelta(t, 9.5, jt.Stats.Rating, 1e-9)
	assert.InDelta(t, 490.0, jt.Stats.Score, 1e-9)
	assert.InDelta(t, 53.33, jt.Stats.AvgPopularity, 1e-9)
	assert.InDelta(t, 3.17, jt.Stats.AvgRating, 1e-9)
	assert.InDelta(t, 163.33, jt.Stats.AvgScore, 1e-9)

	rr := mustFind(t, tree, "USA", "Nevada", "Red Rock")
	assert.Equal(t, 2, rr.TotalRoutes)
	assert.InDelta(t, 600.0, rr.Stats.Score, 1e-9)
	assert.InDelta(t, 100.0, rr.Stats.AvgPopularity, 1e-9)
	assert.InDelta(t, 1.5, rr.Stats.AvgRating, 1e-9)
	assert.InDelta(t, 300.0, rr.Stats.AvgScore, 1e-9)

	usa := mustFind(t, tree, "USA")
	assert.Equal(t, 5, usa.TotalRoutes)
	assert.InDelta(t, 1090.0, usa.Stats.Score, 1e-9)

	assert.Equal(t, 0, root.Stats.Unscored)
}

func TestCalculateStats_ParentSumsChildren(t *testing.T) {
	tree := buildFixtureTree(t)
	tree.InitStats(NewStatsContext())

	for id := AreaID(0); int(id) < tree.NumAreas(); id++ {
		a, _ := tree.Area(id)
		if a.IsLeafParent() {
			assert.Equal(t, len(a.Routes), a.TotalRoutes)
			continue
		}
		var total, matching, pop int
		for _, child := range tree.SubAreas(id) {
			total += child.TotalRoutes
			matching += child.Stats.MatchingRoutes
			pop += child.Stats.Popularity
		}
		assert.Equal(t, total, a.TotalRoutes, a.Name)
		assert.Equal(t, matching, a.Stats.MatchingRoutes, a.Name)
		assert.Equal(t, pop, a.Stats.Popularity, a.Name)
		assert.Equal(t, tree.CountRoutes(id), a.TotalRoutes, a.Name)
	}
}

func TestCalculateStats_FilterNarrowsMatchesOnly(t *testing.T) {
	tree := buildFixtureTree(t)
	sc := NewStatsContext()
	tree.InitStats(sc)

	require.NoError(t, sc.Filter.SetLowerGrade("5.10a"))
	require.NoError(t, sc.Filter.SetUpperGrade("5.11b"))
	tree.CalculateStats(sc)

	root := tree.Root()
	assert.Equal(t, 6, root.TotalRoutes, "total routes ignore the filter")
	assert.Equal(t, 4, root.Stats.MatchingRoutes)
	assert.InDelta(t, 854.0, root.Stats.Score, 1e-9)

	// гистограммы типов считаются по всем маршрутам
	assert.Equal(t, 3, root.Stats.RouteTypes[RouteTypeTrad])
	assert.Equal(t, 3, root.Stats.RouteTypes[RouteTypeSport])
	assert.Equal(t, 1, root.Stats.RouteTypes[RouteTypeTopRope])
	assert.Equal(t, 1, root.Stats.Grades["5.9"])

	a, _ := tree.Route(0)
	assert.False(t, a.Matches)
	assert.Zero(t, a.Score)
}

func TestCalculateStats_NoMatches(t *testing.T) {
	tree := buildFixtureTree(t)
	sc := NewStatsContext()
	require.NoError(t, sc.Filter.SetLowerGrade("5.15a"))
	tree.InitStats(sc)

	for id := AreaID(0); int(id) < tree.NumAreas(); id++ {
		a, _ := tree.Area(id)
		assert.Zero(t, a.Stats.MatchingRoutes, a.Name)
		assert.Zero(t, a.Stats.AvgScore, a.Name)
		assert.Zero(t, a.Stats.AvgRating, a.Name)
		assert.Zero(t, a.Stats.AvgPopularity, a.Name)
	}
	assert.Equal(t, 6, tree.Root().TotalRoutes)
}

func TestCalculateStats_Idempotent(t *testing.T) {
	tree := buildFixtureTree(t)
	sc := NewStatsContext()
	tree.InitStats(sc)
	first := tree.Root().Stats

	tree.CalculateStats(sc)
	assert.Equal(t, first, tree.Root().Stats)
}

func TestCalculateStats_UnscoredRoutes(t *testing.T) {
	tree := buildFixtureTree(t)
	sc := NewStatsContext()
	require.NoError(t, sc.Model.SetModel("logarithmic"))
	tree.InitStats(sc)

	rr := mustFind(t, tree, "USA", "Nevada", "Red Rock")
	assert.Equal(t, 2, rr.Stats.MatchingRoutes)
	assert.Equal(t, 1, rr.Stats.Unscored)
	assert.Equal(t, 1, tree.Root().Stats.Unscored)
	assert.InDelta(t, 1.5, rr.Stats.AvgRating, 1e-9)
	// ln(201)*3 = 15.91; E без score не тянет среднее вниз
	assert.InDelta(t, 15.91, rr.Stats.Score, 1e-9)
	assert.InDelta(t, 15.91, rr.Stats.AvgScore, 1e-9)

	e, _ := tree.Route(4)
	require.Equal(t, "E", e.Name)
	assert.True(t, e.Matches)
	assert.False(t, e.Scored)
	assert.Zero(t, e.Score)
}

func TestCalculateStats_StateTransitions(t *testing.T) {
	tree := buildFixtureTree(t)
	jt := mustFind(t, tree, "USA", "California", "Joshua Tree")
	assert.Equal(t, StatsUnfilled, jt.State)

	tree.CalculateTotals()
	assert.Equal(t, StatsTotaled, jt.State)

	tree.CalculateStats(NewStatsContext())
	assert.Equal(t, StatsFiltered, jt.State)
	assert.Equal(t, "filtered", jt.State.String())
}

func TestCalculateStats_RecountsAfterStructureChange(t *testing.T) {
	tree := buildFixtureTree(t)
	sc := NewStatsContext()
	tree.InitStats(sc)

	crag := mustFind(t, tree, "Canada", "Squamish")
	r, _ := NewRoute("G", "G", "", "5.8", []string{RouteTypeTrad}, 1, 20, 2, 2)
	_, err := tree.AddRoute(crag.ID, r)
	require.NoError(t, err)

	tree.CalculateStats(sc)
	assert.Equal(t, 7, tree.Root().TotalRoutes)
	assert.Equal(t, 2, crag.TotalRoutes)
}
