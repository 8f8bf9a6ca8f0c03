// Package docs registers the OpenAPI document served by the Swagger UI.
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
        "/health": {
            "get": {
                "tags": ["system"],
                "summary": "Readiness check, pings the database",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/healthz": {
            "get": {
                "tags": ["system"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/{resource}/count": {
            "get": {
                "tags": ["resources"],
                "summary": "Count records matching the filters",
                "parameters": [{"name": "resource", "in": "path", "required": true, "type": "string", "enum": ["customers", "sellers", "types"]}],
                "responses": {"200": {"description": "OK", "schema": {"type": "integer"}}}
            }
        },
        "/{resource}": {
            "parameters": [{"name": "resource", "in": "path", "required": true, "type": "string", "enum": ["customers", "sellers", "types"]}],
            "get": {
                "tags": ["resources"],
                "summary": "List records",
                "description": "Filters use field[_op]=value (ne, lt, lte, gt, gte, contains, containss, in). _sort=field:ASC|DESC, _limit, _start. A non-empty _q runs a full-text search.",
                "parameters": [
                    {"name": "_q", "in": "query", "type": "string"},
                    {"name": "_sort", "in": "query", "type": "string"},
                    {"name": "_limit", "in": "query", "type": "integer"},
                    {"name": "_start", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            },
            "post": {
                "tags": ["resources"],
                "summary": "Create a record",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            }
        },
        "/{resource}/{id}": {
            "parameters": [
                {"name": "resource", "in": "path", "required": true, "type": "string", "enum": ["customers", "sellers", "types"]},
                {"name": "id", "in": "path", "required": true, "type": "integer"}
            ],
            "get": {
                "tags": ["resources"],
                "summary": "Fetch a record with its relations",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            },
            "put": {
                "tags": ["resources"],
                "summary": "Update a record",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            },
            "delete": {
                "tags": ["resources"],
                "summary": "Delete a record and return it",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            }
        },
        "/{resource}/{id}/relationships": {
            "parameters": [
                {"name": "resource", "in": "path", "required": true, "type": "string", "enum": ["customers", "sellers", "types"]},
                {"name": "id", "in": "path", "required": true, "type": "integer"},
                {"name": "body", "in": "body", "required": true, "schema": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "integer"}}}}
            ],
            "post": {"tags": ["resources"], "summary": "Link related records", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["resources"], "summary": "Replace related records", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["resources"], "summary": "Unlink related records", "responses": {"200": {"description": "OK"}}}
        },
        "/upload": {
            "post": {
                "tags": ["upload"],
                "summary": "Upload a file, optionally attached to a record field",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "ref", "in": "formData", "type": "string"},
                    {"name": "refId", "in": "formData", "type": "integer"},
                    {"name": "field", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorPayload"}}
                }
            }
        },
        "/upload/files": {
            "get": {
                "tags": ["upload"],
                "summary": "List uploaded files",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"},
                    {"name": "related_type", "in": "query", "type": "string"},
                    {"name": "related_id", "in": "query", "type": "integer"},
                    {"name": "field", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/upload/files/{id}": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
            "get": {
                "tags": ["upload"],
                "summary": "Get file metadata with a presigned URL",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/file"}}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "tags": ["upload"],
                "summary": "Delete a file and its links",
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/upload/files/{id}/content": {
            "get": {
                "tags": ["upload"],
                "summary": "Download file content",
                "produces": ["application/octet-stream"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "file"}}, "404": {"description": "Not Found"}}
            }
        }
    },
    "definitions": {
        "errorPayload": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "error": {
                    "type": "object",
                    "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
                }
            }
        },
        "file": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "hash": {"type": "string"},
                "ext": {"type": "string"},
                "mime": {"type": "string"},
                "size": {"type": "integer"},
                "url": {"type": "string"},
                "provider": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "CMS API",
	Description:      "Generic content API for customers, sellers, types and uploaded files.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
