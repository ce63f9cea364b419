package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rock-radar/internal/domain"
	"github.com/rock-radar/internal/usecase/dto"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	missStyle   = cellStyle.Foreground(lipgloss.Color("8"))
)

// renderArea печатает заголовок района, сводку и таблицу детей
func renderArea(v *dto.AreaView, settings *dto.SettingsResponse) string {
	var b strings.Builder

	title := v.Name
	if len(v.Path) > 0 {
		title = strings.Join(v.Path, " / ")
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(summary(v, settings)))
	b.WriteString("\n")

	if v.IsCrag {
		b.WriteString(routeTable(v))
	} else {
		b.WriteString(areaTable(v))
	}
	return b.String()
}

func summary(v *dto.AreaView, s *dto.SettingsResponse) string {
	line := fmt.Sprintf("%d routes, %d matching, score %s, avg score %s",
		v.TotalRoutes, v.Stats.MatchingRoutes,
		formatValue(v.Stats.Score), formatValue(v.Stats.AvgScore))
	if v.Stats.Unscored > 0 {
		line += fmt.Sprintf(", %d unscored", v.Stats.Unscored)
	}
	if s != nil {
		line += fmt.Sprintf("\nfilter %s..%s, model %s", s.Filter.LowerGrade, s.Filter.UpperGrade, s.Model.Model)
	}
	return line
}

func areaTable(v *dto.AreaView) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Area", "Routes", "Matching", v.Metric)

	for i, a := range v.SubAreas {
		t.Row(strconv.Itoa(i+1), a.Name, strconv.Itoa(a.TotalRoutes), strconv.Itoa(a.MatchingRoutes), formatValue(a.Value))
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if row >= 0 && row < len(v.SubAreas) && v.SubAreas[row].MatchingRoutes == 0 {
			return missStyle
		}
		return cellStyle
	})
	return t.String()
}

func routeTable(v *dto.AreaView) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Route", "Grade", v.Metric)

	for i, r := range v.Routes {
		t.Row(strconv.Itoa(i+1), r.Label, r.Grade, formatValue(r.Value))
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if row >= 0 && row < len(v.Routes) && !v.Routes[row].Matches {
			return missStyle
		}
		return cellStyle
	})
	return t.String()
}

func renderRegions(regions []domain.Region) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Region", "Routes")

	total := 0
	for _, r := range regions {
		t.Row(r.Name, strconv.Itoa(r.Routes))
		total += r.Routes
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		return cellStyle
	})
	return t.String() + "\n" + dimStyle.Render(fmt.Sprintf("%d regions, %d routes", len(regions), total))
}

// formatValue печатает значение метрики: целые без дробной части, остальное с 2 знаками
func formatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', 2, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}
