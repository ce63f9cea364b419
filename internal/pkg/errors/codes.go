package errors

import "net/http"

const (
	CodeStructural     = "STRUCTURAL_ERROR"
	CodeInvalidGrade   = "INVALID_GRADE"
	CodeDomain         = "DOMAIN_ERROR"
	CodeInvalidConfig  = "INVALID_CONFIG"
	CodeInvalidRequest = "INVALID_REQUEST"
)

var (
	// ErrStructural - недопустимое изменение дерева (смешанные дети, добавление к маршруту)
	ErrStructural = New(
		CodeStructural,
		"Illegal tree mutation",
		http.StatusConflict,
	)

	// ErrParse - некорректная строка категории сложности
	ErrParse = New(
		CodeInvalidGrade,
		"Malformed grade",
		http.StatusBadRequest,
	)

	// ErrDomain - расчет рейтинга на недопустимых входных данных
	ErrDomain = New(
		CodeDomain,
		"Score cannot be computed",
		http.StatusUnprocessableEntity,
	)

	// ErrConfig - неизвестный ключ сортировки, метрика или модель
	ErrConfig = New(
		CodeInvalidConfig,
		"Unknown setting",
		http.StatusBadRequest,
	)

	ErrAreaNotFound = New(
		"AREA_NOT_FOUND",
		"Area not found",
		http.StatusNotFound,
	)

	ErrRouteNotFound = New(
		"ROUTE_NOT_FOUND",
		"Route not found",
		http.StatusNotFound,
	)

	ErrRegionNotFound = New(
		"REGION_NOT_FOUND",
		"Region not found",
		http.StatusNotFound,
	)

	ErrInvalidRequest = New(
		CodeInvalidRequest,
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
