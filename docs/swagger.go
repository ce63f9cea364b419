// Package docs Rock Radar API.
//
// Сервис ранжирования скалолазных районов. Строит дерево районов из записей
// маршрутов, считает статистику с учетом фильтра и модели ранжирования и
// отдает отсортированные уровни дерева.
//
// Основные возможности:
// - Просмотр дерева районов и маршрутов с выбранной метрикой
// - Фильтр по категории, длине, числу питчей и типам маршрутов
// - Модели ранжирования raw, logarithmic и logistic
// - Загрузка регионов источника (синхронно или через Redis Stream)
//
//	Schemes: http
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/health": {"get": {"tags": ["Health"], "summary": "Health check", "responses": {"200": {"description": "OK"}, "503": {"description": "Degraded"}}}},
        "/api/v1/areas/root": {"get": {"tags": ["Areas"], "summary": "Get root area", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/areas/by-path": {"get": {"tags": ["Areas"], "summary": "Find area by path",
            "parameters": [{"name": "path", "in": "query", "type": "string", "required": true}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
        "/api/v1/areas/{id}": {"get": {"tags": ["Areas"], "summary": "Get area by ID",
            "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
        "/api/v1/areas/{id}/parent": {"put": {"tags": ["Areas"], "summary": "Move area under another parent",
            "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true},
                {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}},
        "/api/v1/routes/{id}": {"get": {"tags": ["Routes"], "summary": "Get route by ID",
            "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/v1/settings": {"get": {"tags": ["Settings"], "summary": "Get ranking settings", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/settings/filter": {"put": {"tags": ["Settings"], "summary": "Update route filter",
            "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/api/v1/settings/model": {"put": {"tags": ["Settings"], "summary": "Select ranking model",
            "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/api/v1/settings/sort": {"put": {"tags": ["Settings"], "summary": "Set sort keys",
            "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/api/v1/settings/metrics": {"put": {"tags": ["Settings"], "summary": "Set displayed metrics",
            "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/api/v1/options": {"get": {"tags": ["Settings"], "summary": "Get allowed setting values", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/refresh": {"post": {"tags": ["Settings"], "summary": "Recalculate stats", "description": "Returns settings and the root view of the new snapshot", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/regions": {"get": {"tags": ["Regions"], "summary": "List source regions",
            "parameters": [{"name": "all", "in": "query", "type": "boolean"}],
            "responses": {"200": {"description": "OK"}}}},
        "/api/v1/regions/import": {"post": {"tags": ["Regions"], "summary": "Import region into the tree",
            "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}],
            "responses": {"200": {"description": "OK"}, "202": {"description": "Queued"}, "404": {"description": "Not Found"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Rock Radar API",
	Description:      "Ranking of climbing areas and routes",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
