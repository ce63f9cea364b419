package domain

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	apperrors "github.com/rock-radar/internal/pkg/errors"
)

// gradePattern разбирает строки вида "5.10b/c", "5.9+", "5.11a PG13", "5.10a ".
// Все после первого пробела (рейтинг защиты и т.п.) игнорируется при сравнении.
var gradePattern = regexp.MustCompile(`^5\.(\d{1,2})(a/b|b/c|c/d|[abcd+-])?(?:\s+\S.*)?\s*$`)

// looseGroup - группа суффиксов, считающихся эквивалентными границе с суффиксом bound
type looseGroup struct {
	bound   string
	members []string
}

// looseEquivalency - таблица нестрогой эквивалентности суффиксов.
// Порядок групп и членов внутри групп задает строгий ранг суффиксов (см. suffixRank).
var looseEquivalency = []looseGroup{
	{bound: "a", members: []string{"a", "-", "a/b"}},
	{bound: "b", members: []string{"a/b", "b", "", "b/c"}},
	{bound: "c", members: []string{"b/c", "c", "+", "c/d"}},
	{bound: "d", members: []string{"+", "c/d", "d"}},
	{bound: "", members: []string{"-", "", "+"}},
}

// suffixRank - ранг суффикса: позиция первого вхождения в развернутой таблице, начиная с 10
var suffixRank = buildSuffixRank()

func buildSuffixRank() map[string]int {
	ranks := make(map[string]int)
	pos := 10
	for _, group := range looseEquivalency {
		for _, suffix := range group.members {
			if _, ok := ranks[suffix]; !ok {
				ranks[suffix] = pos
			}
			pos++
		}
	}
	return ranks
}

var commonGrades = []string{
	"5.0", "5.1", "5.2", "5.3", "5.4", "5.5", "5.6", "5.7", "5.8",
	"5.9", "5.10a", "5.10b", "5.10c", "5.10d", "5.11a", "5.11b",
	"5.11c", "5.11d", "5.12a", "5.12b", "5.12c", "5.12d", "5.13a",
	"5.13b", "5.13c", "5.13d", "5.14a", "5.14b", "5.14c", "5.14d",
	"5.15a", "5.15b", "5.15c", "5.15d",
}

// Grade - категория сложности маршрута (YDS). Неизменяемое значение.
type Grade struct {
	raw    string
	base   int
	suffix string
	value  float64
}

// ParseGrade разбирает строку категории сложности
func ParseGrade(text string) (Grade, error) {
	m := gradePattern.FindStringSubmatch(text)
	if m == nil {
		return Grade{}, apperrors.Newf(apperrors.ErrParse, "malformed grade %q", text)
	}

	base, err := strconv.Atoi(m[1])
	if err != nil {
		return Grade{}, apperrors.Newf(apperrors.ErrParse, "malformed grade %q", text)
	}

	suffix := m[2]
	rank := suffixRank[suffix]

	return Grade{
		raw:    text,
		base:   base,
		suffix: suffix,
		value:  math.Round((float64(base)+float64(rank)/100)*100) / 100,
	}, nil
}

// MustParseGrade - ParseGrade для констант, паникует на ошибке
func MustParseGrade(text string) Grade {
	g, err := ParseGrade(text)
	if err != nil {
		panic(err)
	}
	return g
}

func (g Grade) String() string { return g.raw }

// Base возвращает базовую категорию (5.10b/c -> 10)
func (g Grade) Base() int { return g.base }

// Suffix возвращает суффикс (5.10b/c -> "b/c")
func (g Grade) Suffix() string { return g.suffix }

// Value возвращает числовое значение, задающее полный порядок категорий
func (g Grade) Value() float64 { return g.value }

// IsZero сообщает, что категория не была разобрана
func (g Grade) IsZero() bool { return g.raw == "" }

// Compare возвращает -1, 0 или 1
func (g Grade) Compare(other Grade) int {
	switch {
	case g.value < other.value:
		return -1
	case g.value > other.value:
		return 1
	default:
		return 0
	}
}

func (g Grade) Less(other Grade) bool  { return g.value < other.value }
func (g Grade) Equal(other Grade) bool { return g.value == other.value }

// IsInRange проверяет lower <= g <= upper либо нестрогую эквивалентность одной из границ.
// Нестрогая проверка намеренно пропускает соседние суффиксы на границе (5.10b/c для 5.10b).
func (g Grade) IsInRange(lower, upper Grade) bool {
	if lower.value <= g.value && g.value <= upper.value {
		return true
	}
	return g.looselyEquals(lower) || g.looselyEquals(upper)
}

// looselyEquals: та же базовая категория и суффикс входит в группу суффикса границы.
// Границы со слеш-суффиксом не имеют группы и нестрого ничему не равны.
func (g Grade) looselyEquals(bound Grade) bool {
	if bound.base != g.base {
		return false
	}
	for _, group := range looseEquivalency {
		if group.bound != bound.suffix {
			continue
		}
		for _, member := range group.members {
			if member == g.suffix {
				return true
			}
		}
		return false
	}
	return false
}

func (g Grade) MarshalText() ([]byte, error) {
	return []byte(g.raw), nil
}

func (g *Grade) UnmarshalText(text []byte) error {
	parsed, err := ParseGrade(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// AllCommonGrades возвращает каталог распространенных категорий от 5.0 до 5.15d по возрастанию
func AllCommonGrades() []Grade {
	grades := make([]Grade, 0, len(commonGrades))
	for _, s := range commonGrades {
		grades = append(grades, MustParseGrade(s))
	}
	sort.SliceStable(grades, func(i, j int) bool {
		return grades[i].Less(grades[j])
	})
	return grades
}

// LowestGrade и HighestGrade - границы фильтра по умолчанию
func LowestGrade() Grade  { return MustParseGrade(commonGrades[0]) }
func HighestGrade() Grade { return MustParseGrade(commonGrades[len(commonGrades)-1]) }
