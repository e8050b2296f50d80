// Package docs holds the OpenAPI description served at /swagger.
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
        "/extractions": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["extractions"],
                "summary": "List extractions",
                "parameters": [
                    {"type": "integer", "default": 0, "description": "Offset", "name": "offset", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Limit", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "Extractions", "schema": {"$ref": "#/definitions/handler.Response"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json", "text/markdown", "text/html"],
                "tags": ["extractions"],
                "summary": "Extract a document",
                "parameters": [
                    {"type": "string", "description": "Response format: json (default), markdown or html", "name": "format", "in": "query"},
                    {"description": "Document layout", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.SourceDocument"}}
                ],
                "responses": {
                    "200": {"description": "Extraction result", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Invalid layout", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "503": {"description": "No templates loaded", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/extractions/batch": {
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json", "text/csv"],
                "tags": ["extractions"],
                "summary": "Extract a batch of documents",
                "parameters": [
                    {"type": "string", "description": "Response format: json (default), csv or xlsx", "name": "format", "in": "query"},
                    {"description": "Documents", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.BatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "Batch results and summary", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Invalid request or batch too large", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/extractions/{id}": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["extractions"],
                "summary": "Get extraction by ID",
                "parameters": [{"type": "string", "description": "Extraction ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Stored extraction", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Extraction not found", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/extractions/{id}/preview": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["text/html"],
                "tags": ["extractions"],
                "summary": "Preview extraction as HTML",
                "parameters": [{"type": "string", "description": "Extraction ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Rendered HTML", "schema": {"type": "string"}}}
            }
        },
        "/jobs": {
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Enqueue an extraction job",
                "parameters": [{"description": "Layout object key", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.EnqueueJobRequest"}}],
                "responses": {"201": {"description": "Job queued", "schema": {"$ref": "#/definitions/handler.Response"}}}
            }
        },
        "/jobs/{id}": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Get job status",
                "parameters": [{"type": "string", "description": "Job ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Job", "schema": {"$ref": "#/definitions/handler.Response"}}}
            }
        },
        "/templates": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["templates"],
                "summary": "List templates",
                "responses": {"200": {"description": "Loaded templates", "schema": {"$ref": "#/definitions/handler.Response"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json", "application/yaml"],
                "produces": ["application/json"],
                "tags": ["templates"],
                "summary": "Store a template",
                "parameters": [{"type": "string", "description": "Source file name; a .yaml or .yml suffix selects YAML", "name": "name", "in": "query"}],
                "responses": {
                    "201": {"description": "Stored template", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Malformed template", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/templates/reload": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["templates"],
                "summary": "Reload the template catalog",
                "responses": {"200": {"description": "Reload report", "schema": {"$ref": "#/definitions/handler.Response"}}}
            }
        },
        "/templates/{id}": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["templates"],
                "summary": "Get template by ID",
                "parameters": [{"type": "string", "description": "Template ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Template definition", "schema": {"$ref": "#/definitions/handler.Response"}}}
            }
        },
        "/tokens": {
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Issue an access token",
                "parameters": [{"description": "Token subject and role", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.IssueTokenRequest"}}],
                "responses": {"201": {"description": "Issued token", "schema": {"$ref": "#/definitions/handler.Response"}}}
            }
        }
    },
    "definitions": {
        "domain.RawToken": {
            "type": "object",
            "properties": {
                "text": {"type": "string"},
                "bbox": {"type": "array", "items": {"type": "number"}},
                "confidence": {"type": "number"}
            }
        },
        "domain.RawPage": {
            "type": "object",
            "properties": {
                "index": {"type": "integer"},
                "width": {"type": "number"},
                "height": {"type": "number"},
                "tokens": {"type": "array", "items": {"$ref": "#/definitions/domain.RawToken"}}
            }
        },
        "domain.SourceDocument": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "pages": {"type": "array", "items": {"$ref": "#/definitions/domain.RawPage"}}
            }
        },
        "handler.APIError": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "handler.BatchRequest": {
            "type": "object",
            "required": ["documents"],
            "properties": {"documents": {"type": "array", "items": {"$ref": "#/definitions/domain.SourceDocument"}}}
        },
        "handler.EnqueueJobRequest": {
            "type": "object",
            "required": ["source_key"],
            "properties": {"source_key": {"type": "string", "example": "layouts/bol-2025-08-26.json"}}
        },
        "handler.IssueTokenRequest": {
            "type": "object",
            "required": ["role", "subject"],
            "properties": {
                "subject": {"type": "string", "example": "ingest-worker"},
                "role": {"type": "string", "example": "service"},
                "ttl": {"type": "string", "example": "24h"}
            }
        },
        "handler.ErrorResponseBody": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "error": {"$ref": "#/definitions/handler.APIError"}
            }
        },
        "handler.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "data": {}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"},
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "bolx API",
	Description:      "Template-matching structured extraction for bills of lading.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
