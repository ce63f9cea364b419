package domain

import (
	"math"

	apperrors "github.com/rock-radar/internal/pkg/errors"
)

// Model - способ расчета рейтинга маршрута
type Model string

const (
	ModelRaw         Model = "raw"
	ModelLogarithmic Model = "logarithmic"
	ModelLogistic    Model = "logistic"
)

const (
	DefaultTargetPopularity = 100.0
	DefaultTrust            = 0.1
)

// Models возвращает все доступные модели
func Models() []Model {
	return []Model{ModelRaw, ModelLogarithmic, ModelLogistic}
}

// RankingModel считает score маршрута по популярности и оценке
type RankingModel struct {
	model            Model
	targetPopularity float64
	trust            float64
}

// NewRankingModel создает модель raw
func NewRankingModel() *RankingModel {
	return &RankingModel{
		model:            ModelRaw,
		targetPopularity: DefaultTargetPopularity,
		trust:            DefaultTrust,
	}
}

func (m *RankingModel) Model() Model               { return m.model }
func (m *RankingModel) TargetPopularity() float64 { return m.targetPopularity }
func (m *RankingModel) Trust() float64            { return m.trust }

// SetModel переключает модель. Для logistic params = [target_popularity, trust],
// пропущенные параметры берутся по умолчанию.
func (m *RankingModel) SetModel(name string, params ...float64) error {
	model := Model(name)
	switch model {
	case ModelRaw, ModelLogarithmic:
		m.model = model
		return nil
	case ModelLogistic:
	default:
		return apperrors.Newf(apperrors.ErrConfig, "unknown ranking model %q", name)
	}

	if len(params) > 2 {
		return apperrors.Newf(apperrors.ErrConfig, "logistic model takes at most 2 parameters, got %d", len(params))
	}

	target, trust := DefaultTargetPopularity, DefaultTrust
	if len(params) > 0 {
		target = params[0]
	}
	if len(params) > 1 {
		trust = params[1]
	}
	if target <= 0 || trust <= 0 {
		return apperrors.Newf(apperrors.ErrConfig, "logistic parameters must be positive (target=%v, trust=%v)", target, trust)
	}

	m.model = ModelLogistic
	m.targetPopularity = target
	m.trust = trust
	return nil
}

// GetScore возвращает score для текущей модели, округленный до сотых
func (m *RankingModel) GetScore(popularity int, rating float64) (float64, error) {
	if popularity < 0 || rating < 0 || math.IsNaN(rating) {
		return 0, apperrors.Newf(apperrors.ErrDomain, "invalid popularity %d or rating %v", popularity, rating)
	}

	switch m.model {
	case ModelLogarithmic:
		if popularity == 0 {
			return 0, apperrors.Newf(apperrors.ErrDomain, "logarithmic model requires positive popularity")
		}
		return round2(math.Log(float64(popularity)+1) * rating), nil
	case ModelLogistic:
		if popularity == 0 {
			return 0, apperrors.Newf(apperrors.ErrDomain, "logistic model requires positive popularity")
		}
		c := m.targetPopularity / 2
		exponent := -m.trust * (float64(popularity) - c)
		return round2(rating / (1 + math.Exp(exponent))), nil
	default:
		return round2(float64(popularity) * rating), nil
	}
}

// Clone возвращает независимую копию модели
func (m *RankingModel) Clone() *RankingModel {
	cp := *m
	return &cp
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
