// Package docs registers the OpenAPI document of the monitor API with swag.
// Regenerate with: swag init -g docs/docs.go --instanceName crowdguard
package docs

import "github.com/swaggo/swag"

// @title           crowdguard monitor API
// @version         1.0
// @description     Crowd safety dashboard data: predicted zones, personnel recommendations, crowd redirection plans, hotspots, nearby services, travel paths and simulation grid queries.

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const InstanceName = "crowdguard"

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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/health": {"get": {"tags": ["Health"], "summary": "Health Check", "responses": {"200": {"description": "OK"}}}},
        "/v1/dashboard": {"get": {"tags": ["Dashboard"], "summary": "Dashboard snapshot", "responses": {"200": {"description": "OK"}}}},
        "/v1/dashboard/refresh": {"post": {"tags": ["Dashboard"], "summary": "Force a dashboard refresh", "responses": {"200": {"description": "OK"}}}},
        "/v1/dashboard/history": {"get": {"tags": ["Dashboard"], "summary": "Snapshot history",
            "parameters": [{"type": "integer", "default": 20, "name": "limit", "in": "query"}],
            "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}}},
        "/v1/zones": {"get": {"tags": ["Dashboard"], "summary": "Predicted zones", "responses": {"200": {"description": "OK"}}}},
        "/v1/recommendations": {"get": {"tags": ["Dashboard"], "summary": "Recommended personnel positions", "responses": {"200": {"description": "OK"}}}},
        "/v1/redirections": {"get": {"tags": ["Dashboard"], "summary": "Crowd redirection plans", "responses": {"200": {"description": "OK"}}}},
        "/v1/deployments": {"post": {"tags": ["Dispatch"], "summary": "Confirm a recommended position", "security": [{"BearerAuth": []}],
            "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object", "properties": {"position_id": {"type": "string"}}}}],
            "responses": {"201": {"description": "Created"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}},
        "/v1/redirections/{id}/status": {"put": {"tags": ["Dispatch"], "summary": "Change the status of a redirection plan", "security": [{"BearerAuth": []}],
            "parameters": [{"type": "string", "name": "id", "in": "path", "required": true},
                {"name": "request", "in": "body", "required": true, "schema": {"type": "object", "properties": {"status": {"type": "string", "enum": ["planned", "active", "paused", "completed"]}}}}],
            "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}},
        "/v1/hotspots/predict": {"get": {"tags": ["Hotspots"], "summary": "Predicted hotspots",
            "parameters": [{"type": "integer", "default": 30, "name": "minutes", "in": "query"}],
            "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}}},
        "/v1/hotspots/samples": {"get": {"tags": ["Hotspots"], "summary": "Reference crowd samples", "responses": {"200": {"description": "OK"}}}},
        "/v1/hotspots/live": {"post": {"tags": ["Hotspots"], "summary": "Live hotspots around a location",
            "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object", "properties": {"lat": {"type": "number"}, "lng": {"type": "number"}}}}],
            "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}, "429": {"description": "Too Many Requests"}}}},
        "/ws/live": {"get": {"tags": ["Hotspots"], "summary": "Live tracker websocket",
            "parameters": [{"type": "number", "name": "lat", "in": "query", "required": true}, {"type": "number", "name": "lng", "in": "query", "required": true}],
            "responses": {"101": {"description": "Switching Protocols"}, "422": {"description": "Unprocessable Entity"}}}},
        "/v1/services/nearby": {"get": {"tags": ["Services"], "summary": "Nearby emergency services",
            "parameters": [{"type": "number", "name": "lat", "in": "query", "required": true}, {"type": "number", "name": "lng", "in": "query", "required": true},
                {"type": "number", "default": 1, "name": "radius", "in": "query"}],
            "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}}},
        "/v1/travel/path": {"post": {"tags": ["Travel"], "summary": "Crowd-annotated travel path",
            "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object", "properties": {"source": {"type": "string"}, "destination": {"type": "string"}}}}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}}}},
        "/v1/grid/path": {"post": {"tags": ["Simulation"], "summary": "Density-aware grid routes",
            "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"type": "object", "properties": {
                "grid": {"type": "array", "items": {"type": "array", "items": {"type": "integer"}}},
                "start": {"type": "array", "items": {"type": "integer"}}, "goal": {"type": "array", "items": {"type": "integer"}}}}}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}}}},
        "/v1/placement": {"get": {"tags": ["Simulation"], "summary": "Emergency unit placement",
            "parameters": [{"type": "integer", "default": 5, "name": "units", "in": "query"}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "crowdguard monitor API",
	Description:      "Crowd safety dashboard data service.",
	InfoInstanceName: InstanceName,
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
