// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o internal/docs
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
    "paths": {
        "/profile": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["profile"], "summary": "Get profile", "responses": {"200": {"description": "OK"}, "404": {"description": "Profile not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["profile"], "summary": "Save profile", "responses": {"200": {"description": "OK"}}}
        },
        "/spaces": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["spaces"], "summary": "List my spaces", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["spaces"], "summary": "Create a space", "responses": {"201": {"description": "Created"}, "409": {"description": "Slug taken", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}}
        },
        "/spaces/{slug}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["spaces"], "summary": "Get a space", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "No access"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["spaces"], "summary": "Update a space", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Not the owner"}}}
        },
        "/spaces/{slug}/members": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["spaces"], "summary": "List members", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["spaces"], "summary": "Add a member", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "409": {"description": "Already a member"}}}
        },
        "/spaces/{slug}/members/{userId}": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["spaces"], "summary": "Remove a member", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "string", "name": "userId", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DeletedResponse"}}}}
        },
        "/spaces/{slug}/categories": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "List categories", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "string", "name": "q", "in": "query"}, {"type": "string", "name": "kind", "in": "query"}, {"type": "string", "name": "cursor", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "Create a category", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate name"}}}
        },
        "/spaces/{slug}/categories/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "Update a category", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "Delete a category", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DeletedResponse"}}, "409": {"description": "Category in use"}}}
        },
        "/spaces/{slug}/holdings": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["holdings"], "summary": "List holdings", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "string", "name": "q", "in": "query"}, {"type": "string", "name": "type", "in": "query"}, {"type": "string", "name": "cursor", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["holdings"], "summary": "Create a holding", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate name"}}}
        },
        "/spaces/{slug}/holdings/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["holdings"], "summary": "Update a holding", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["holdings"], "summary": "Delete a holding", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DeletedResponse"}}, "409": {"description": "Holding in use"}}}
        },
        "/spaces/{slug}/transactions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "List transactions", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "string", "name": "q", "in": "query"}, {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "type", "in": "query"}, {"type": "string", "name": "categoryId", "in": "query"}, {"type": "string", "name": "holdingId", "in": "query"}, {"type": "string", "name": "from", "in": "query"}, {"type": "string", "name": "to", "in": "query"}, {"type": "string", "name": "cursor", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Create a transaction", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "422": {"description": "References do not match the type"}}}
        },
        "/spaces/{slug}/transactions/export": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "tags": ["transactions"], "summary": "Export transactions", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "string", "name": "month", "in": "query", "required": true}], "responses": {"200": {"description": "OK", "schema": {"type": "file"}}}}
        },
        "/spaces/{slug}/transactions/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Get a transaction", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Transaction not found"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Update a transaction", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "422": {"description": "References do not match the type"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Delete a transaction", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DeletedResponse"}}}}
        },
        "/spaces/{slug}/budgets": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["budgets"], "summary": "List budgets", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "string", "name": "month", "in": "query", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid month"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["budgets"], "summary": "Set a budget", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Concurrent update"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["budgets"], "summary": "Delete a budget", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "string", "name": "categoryId", "in": "query", "required": true}, {"type": "string", "name": "month", "in": "query", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DeletedResponse"}}}}
        },
        "/spaces/{slug}/budgets/history": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["budgets"], "summary": "Budget history", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "string", "name": "categoryId", "in": "query", "required": true}, {"type": "string", "name": "month", "in": "query"}, {"type": "string", "name": "cursor", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}}
        },
        "/spaces/{slug}/summary": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["summary"], "summary": "Month summary", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "string", "name": "month", "in": "query", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/spaces/{slug}/form-options": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["summary"], "summary": "Form options", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "handlers.DeletedResponse": {
            "type": "object",
            "properties": {"id": {"type": "string"}}
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string", "example": "INVALID_INPUT"},
                        "message": {"type": "string", "example": "Invalid input"}
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token issued by the identity provider.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Spacebudget API",
	Description:      "Shared household budgeting: spaces, holdings, categories, transactions and monthly budgets.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
