package domain

import (
	"sort"

	apperrors "github.com/rock-radar/internal/pkg/errors"
)

// Tree - дерево районов и маршрутов. Узлы хранятся в арене и адресуются индексами,
// ссылка на родителя - это индекс, поэтому перенос поддерева сводится к обновлению индексов.
// Tree не потокобезопасен: синхронизация на стороне вызывающего кода.
type Tree struct {
	areas  []*Area
	routes []*Route
	root   AreaID

	// totalsStale выставляется при любом изменении структуры
	totalsStale bool
}

// NewTree создает дерево с корневым районом
func NewTree(rootName string) *Tree {
	t := &Tree{}
	t.root = t.newArea(rootName, NoArea)
	t.totalsStale = true
	return t
}

func (t *Tree) newArea(name string, parent AreaID) AreaID {
	id := AreaID(len(t.areas))
	t.areas = append(t.areas, &Area{
		ID:     id,
		Name:   name,
		Parent: parent,
		Stats:  newAreaStats(),
	})
	return id
}

func (t *Tree) RootID() AreaID { return t.root }
func (t *Tree) Root() *Area    { return t.areas[t.root] }

func (t *Tree) NumAreas() int  { return len(t.areas) }
func (t *Tree) NumRoutes() int { return len(t.routes) }

// Area возвращает район по индексу
func (t *Tree) Area(id AreaID) (*Area, bool) {
	if id < 0 || int(id) >= len(t.areas) {
		return nil, false
	}
	return t.areas[id], true
}

// Route возвращает маршрут по индексу
func (t *Tree) Route(id RouteID) (*Route, bool) {
	if id < 0 || int(id) >= len(t.routes) {
		return nil, false
	}
	return t.routes[id], true
}

func (t *Tree) mustArea(id AreaID) (*Area, error) {
	a, ok := t.Area(id)
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrAreaNotFound, "area %d not found", id)
	}
	return a, nil
}

// Parent возвращает родителя района, для корня - false
func (t *Tree) Parent(id AreaID) (*Area, bool) {
	a, ok := t.Area(id)
	if !ok || a.Parent == NoArea {
		return nil, false
	}
	return t.areas[a.Parent], true
}

// SubAreas возвращает подрайоны в текущем порядке
func (t *Tree) SubAreas(id AreaID) []*Area {
	a, ok := t.Area(id)
	if !ok {
		return nil
	}
	out := make([]*Area, 0, len(a.SubAreas))
	for _, child := range a.SubAreas {
		out = append(out, t.areas[child])
	}
	return out
}

// Child - ребенок района: задано ровно одно из Area и Route
type Child struct {
	Area  *Area
	Route *Route
}

// Name возвращает имя ребенка; для маршрута - его метку
func (c Child) Name() string {
	if c.Route != nil {
		return c.Route.Label()
	}
	return c.Area.Name
}

// Children возвращает детей района в текущем порядке: подрайоны либо маршруты
func (t *Tree) Children(id AreaID) []Child {
	a, ok := t.Area(id)
	if !ok {
		return nil
	}
	out := make([]Child, 0, len(a.SubAreas)+len(a.Routes))
	for _, child := range a.SubAreas {
		out = append(out, Child{Area: t.areas[child]})
	}
	for _, r := range a.Routes {
		out = append(out, Child{Route: t.routes[r]})
	}
	return out
}

// Routes возвращает маршруты crag в текущем порядке
func (t *Tree) Routes(id AreaID) []*Route {
	a, ok := t.Area(id)
	if !ok {
		return nil
	}
	out := make([]*Route, 0, len(a.Routes))
	for _, r := range a.Routes {
		out = append(out, t.routes[r])
	}
	return out
}

// Path возвращает имена районов от верхнего уровня (без корня) до id
func (t *Tree) Path(id AreaID) []string {
	var path []string
	for cur := id; cur != NoArea && cur != t.root; cur = t.areas[cur].Parent {
		path = append(path, t.areas[cur].Name)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// AddArea добавляет подрайон. Ошибка, если родитель уже содержит маршруты.
func (t *Tree) AddArea(parent AreaID, name string) (AreaID, error) {
	p, err := t.mustArea(parent)
	if err != nil {
		return NoArea, err
	}
	if p.IsLeafParent() {
		return NoArea, apperrors.Newf(apperrors.ErrStructural,
			"cannot add area %q to %q: it already holds routes", name, p.Name)
	}
	id := t.newArea(name, parent)
	p.SubAreas = append(p.SubAreas, id)
	t.totalsStale = true
	return id, nil
}

// AddRoute добавляет маршрут в crag. Ошибка, если родитель уже содержит подрайоны.
func (t *Tree) AddRoute(parent AreaID, route *Route) (RouteID, error) {
	p, err := t.mustArea(parent)
	if err != nil {
		return -1, err
	}
	if len(p.SubAreas) > 0 {
		return -1, apperrors.Newf(apperrors.ErrStructural,
			"cannot add route %q to %q: it already holds areas", route.Name, p.Name)
	}
	id := RouteID(len(t.routes))
	route.ID = id
	route.Crag = parent
	t.routes = append(t.routes, route)
	p.Routes = append(p.Routes, id)
	t.totalsStale = true
	return id, nil
}

// FindSubArea ищет подрайон по имени
func (t *Tree) FindSubArea(parent AreaID, name string) (AreaID, bool) {
	p, ok := t.Area(parent)
	if !ok {
		return NoArea, false
	}
	for _, child := range p.SubAreas {
		if t.areas[child].Name == name {
			return child, true
		}
	}
	return NoArea, false
}

// FindOrCreatePath проходит путь от корня, создавая недостающие районы
func (t *Tree) FindOrCreatePath(path []string) (AreaID, error) {
	cur := t.root
	for _, name := range path {
		next, ok := t.FindSubArea(cur, name)
		if !ok {
			var err error
			next, err = t.AddArea(cur, name)
			if err != nil {
				return NoArea, err
			}
		}
		cur = next
	}
	return cur, nil
}

// FindPath возвращает район по пути от корня
func (t *Tree) FindPath(path []string) (AreaID, bool) {
	cur := t.root
	for _, name := range path {
		next, ok := t.FindSubArea(cur, name)
		if !ok {
			return NoArea, false
		}
		cur = next
	}
	return cur, true
}

// Reparent переносит район под другого родителя
func (t *Tree) Reparent(id, newParent AreaID) error {
	a, err := t.mustArea(id)
	if err != nil {
		return err
	}
	p, err := t.mustArea(newParent)
	if err != nil {
		return err
	}
	if id == t.root {
		return apperrors.Newf(apperrors.ErrStructural, "cannot move the root area")
	}
	if p.IsLeafParent() {
		return apperrors.Newf(apperrors.ErrStructural,
			"cannot move %q under %q: it already holds routes", a.Name, p.Name)
	}
	for cur := newParent; cur != NoArea; cur = t.areas[cur].Parent {
		if cur == id {
			return apperrors.Newf(apperrors.ErrStructural,
				"cannot move %q under its own descendant %q", a.Name, p.Name)
		}
	}

	old := t.areas[a.Parent]
	old.SubAreas = removeAreaID(old.SubAreas, id)
	a.Parent = newParent
	p.SubAreas = append(p.SubAreas, id)
	t.totalsStale = true
	return nil
}

func removeAreaID(ids []AreaID, id AreaID) []AreaID {
	for i, cur := range ids {
		if cur == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}

// Graft вливает детей корня sub в район parent. Районы с совпадающими именами
// объединяются рекурсивно, маршруты с уже существующим SourceID пропускаются.
// Конфликт видов узлов проверяется до изменений: при ошибке дерево не меняется.
func (t *Tree) Graft(parent AreaID, sub *Tree) error {
	if _, err := t.mustArea(parent); err != nil {
		return err
	}
	if err := t.checkGraft(parent, sub, sub.root); err != nil {
		return err
	}
	t.applyGraft(parent, sub, sub.root)
	t.totalsStale = true
	return nil
}

func (t *Tree) checkGraft(dst AreaID, sub *Tree, src AreaID) error {
	d := t.areas[dst]
	s := sub.areas[src]

	if s.IsLeafParent() && len(d.SubAreas) > 0 {
		return apperrors.Newf(apperrors.ErrStructural,
			"cannot merge routes of %q into %q: it holds areas", s.Name, d.Name)
	}
	if len(s.SubAreas) > 0 && d.IsLeafParent() {
		return apperrors.Newf(apperrors.ErrStructural,
			"cannot merge areas of %q into %q: it holds routes", s.Name, d.Name)
	}
	for _, child := range s.SubAreas {
		if existing, ok := t.FindSubArea(dst, sub.areas[child].Name); ok {
			if err := t.checkGraft(existing, sub, child); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Tree) applyGraft(dst AreaID, sub *Tree, src AreaID) {
	s := sub.areas[src]

	if s.IsLeafParent() {
		known := make(map[string]struct{}, len(t.areas[dst].Routes))
		for _, rid := range t.areas[dst].Routes {
			known[t.routes[rid].SourceID] = struct{}{}
		}
		for _, rid := range s.Routes {
			r := *sub.routes[rid]
			if _, dup := known[r.SourceID]; dup && r.SourceID != "" {
				continue
			}
			_, _ = t.AddRoute(dst, &r)
			known[r.SourceID] = struct{}{}
		}
		return
	}

	for _, child := range s.SubAreas {
		name := sub.areas[child].Name
		existing, ok := t.FindSubArea(dst, name)
		if !ok {
			existing, _ = t.AddArea(dst, name)
			if c := sub.areas[child].coordinates; c != nil {
				t.areas[existing].SetCoordinates(*c)
			}
		}
		t.applyGraft(existing, sub, child)
	}
}

// RouteTypes возвращает все типы маршрутов, встречающиеся в дереве
func (t *Tree) RouteTypes() []string {
	seen := make(map[string]struct{})
	for _, r := range t.routes {
		for _, rt := range r.RouteTypes {
			seen[rt] = struct{}{}
		}
	}
	types := make([]string, 0, len(seen))
	for rt := range seen {
		types = append(types, rt)
	}
	sort.Strings(types)
	return types
}
