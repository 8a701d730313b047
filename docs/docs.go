// Package docs registers the Swagger document served at /swagger. The
// operations are described by the godoc annotations on the controllers;
// regenerate with `swag init -g cmd/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/admin/tests": {
            "post": {"tags": ["Admin - Tests"], "summary": "(Admin) Create a test", "security": [{"BearerAuth": []}]}
        },
        "/admin/tests/{id}": {
            "get": {"tags": ["Admin - Tests"], "summary": "(Admin) Get a test", "security": [{"BearerAuth": []}]},
            "put": {"tags": ["Admin - Tests"], "summary": "(Admin) Update a test", "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["Admin - Tests"], "summary": "(Admin) Delete a test", "security": [{"BearerAuth": []}]}
        },
        "/admin/tests/{id}/status": {
            "patch": {"tags": ["Admin - Tests"], "summary": "(Admin) Change a test's status", "security": [{"BearerAuth": []}]}
        },
        "/admin/tests/{id}/testsets": {
            "post": {"tags": ["Admin - Tests"], "summary": "(Admin) Attach question sets to a test", "security": [{"BearerAuth": []}]}
        },
        "/admin/tests/{id}/testsets/{setId}": {
            "delete": {"tags": ["Admin - Tests"], "summary": "(Admin) Detach a question set from a test", "security": [{"BearerAuth": []}]}
        },
        "/test/{id}/placement-questions": {
            "get": {"tags": ["Tests"], "summary": "Start a placement session", "security": [{"BearerAuth": []}]}
        },
        "/test/{id}/lesson-review-questions": {
            "get": {"tags": ["Tests"], "summary": "Start a lesson review session", "security": [{"BearerAuth": []}]}
        },
        "/test/{id}/questions-by-level": {
            "get": {"tags": ["Tests"], "summary": "Draw questions of one level", "security": [{"BearerAuth": []}]}
        },
        "/test/{id}/quota/consume": {
            "post": {"tags": ["Tests"], "summary": "Consume one use of a test", "security": [{"BearerAuth": []}]}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "JLPT Assessment API",
	Description:      "Test composition, question sampling and test-taking sessions for JLPT practice.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
