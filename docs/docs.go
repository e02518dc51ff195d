// Package docs registers the forum API's OpenAPI document with swag so the
// swagger UI can serve it at /swagger/doc.json.
//
// The document mirrors the godoc annotations on the handlers; regenerate it
// with `swag init` after changing them.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "ok", "schema": {"$ref": "#/definitions/response.MessageOnly"}},
                    "503": {"description": "Storage unreachable", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "User Registration",
                "parameters": [
                    {"description": "User registration details", "name": "registerBody", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "User registered", "schema": {"$ref": "#/definitions/response.MessageOnly"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "User Login",
                "parameters": [
                    {"description": "User login credentials", "name": "loginBody", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Login successful", "schema": {"$ref": "#/definitions/auth.LoginResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "List of users", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Get current user's profile",
                "responses": {
                    "200": {"description": "User profile", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/users/me/topics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Topics"],
                "summary": "List my topics",
                "responses": {
                    "200": {"description": "List of topics", "schema": {"$ref": "#/definitions/response.Envelope"}}
                }
            }
        },
        "/topics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Topics"],
                "summary": "List topics",
                "responses": {
                    "200": {"description": "List of topics", "schema": {"$ref": "#/definitions/response.Envelope"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Topics"],
                "summary": "Create a topic",
                "parameters": [
                    {"description": "Topic to create", "name": "topic", "in": "body", "required": true, "schema": {"$ref": "#/definitions/topics.CreateTopicRequest"}}
                ],
                "responses": {
                    "201": {"description": "Topic created successfully", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "409": {"description": "A topic with the same title already exists", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/topics/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Topics"],
                "summary": "Get a topic",
                "parameters": [{"type": "string", "description": "Topic ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Topic found", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "404": {"description": "Topic not found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Topics"],
                "summary": "Update a topic",
                "parameters": [
                    {"type": "string", "description": "Topic ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "topic", "in": "body", "required": true, "schema": {"$ref": "#/definitions/topics.UpdateTopicRequest"}}
                ],
                "responses": {
                    "200": {"description": "Topic updated", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "404": {"description": "Topic not found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "409": {"description": "A topic with the same title already exists", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Topics"],
                "summary": "Delete a topic",
                "parameters": [{"type": "string", "description": "Topic ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Topic deleted", "schema": {"$ref": "#/definitions/response.MessageOnly"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "404": {"description": "Topic not found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/threads": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Threads"],
                "summary": "Create a thread",
                "parameters": [
                    {"description": "Thread to create", "name": "thread", "in": "body", "required": true, "schema": {"$ref": "#/definitions/threads.CreateThreadRequest"}}
                ],
                "responses": {
                    "201": {"description": "Thread created successfully", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "404": {"description": "Topic not found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/threads/by-topic/{topicId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Threads"],
                "summary": "List threads of a topic",
                "parameters": [{"type": "string", "description": "Topic ID", "name": "topicId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Threads found", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "404": {"description": "Topic not found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/threads/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Threads"],
                "summary": "Get a thread",
                "parameters": [{"type": "string", "description": "Thread ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Thread found", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "404": {"description": "Thread not found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Threads"],
                "summary": "Update a thread",
                "parameters": [
                    {"type": "string", "description": "Thread ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "thread", "in": "body", "required": true, "schema": {"$ref": "#/definitions/threads.UpdateThreadRequest"}}
                ],
                "responses": {
                    "200": {"description": "Thread updated successfully", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "404": {"description": "Thread not found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Threads"],
                "summary": "Delete a thread",
                "parameters": [{"type": "string", "description": "Thread ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Thread deleted", "schema": {"$ref": "#/definitions/response.MessageOnly"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "404": {"description": "Thread not found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/threads/{id}/events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/event-stream"],
                "tags": ["Threads"],
                "summary": "Follow a thread",
                "parameters": [{"type": "string", "description": "Thread ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "event stream", "schema": {"type": "string"}},
                    "404": {"description": "Thread not found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/contributions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Contributions"],
                "summary": "Post a contribution",
                "parameters": [
                    {"description": "Contribution to post", "name": "contribution", "in": "body", "required": true, "schema": {"$ref": "#/definitions/contributions.CreateContributionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Contribution created successfully", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "404": {"description": "Thread or parent contribution not found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/contributions/thread/{threadId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Contributions"],
                "summary": "List contributions of a thread",
                "parameters": [{"type": "string", "description": "Thread ID", "name": "threadId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Contributions found", "schema": {"$ref": "#/definitions/response.Envelope"}}
                }
            }
        },
        "/contributions/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Contributions"],
                "summary": "Get a contribution",
                "parameters": [{"type": "string", "description": "Contribution ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Contribution found", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "404": {"description": "Contribution not found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Contributions"],
                "summary": "Edit a contribution",
                "parameters": [
                    {"type": "string", "description": "Contribution ID", "name": "id", "in": "path", "required": true},
                    {"description": "New content", "name": "contribution", "in": "body", "required": true, "schema": {"$ref": "#/definitions/contributions.UpdateContributionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Contribution updated successfully", "schema": {"$ref": "#/definitions/response.Envelope"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "404": {"description": "Contribution not found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Contributions"],
                "summary": "Delete a contribution",
                "parameters": [{"type": "string", "description": "Contribution ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Contribution deleted successfully", "schema": {"$ref": "#/definitions/response.MessageOnly"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "404": {"description": "Contribution not found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "apperror.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string", "example": "title"},
                "message": {"type": "string", "example": "title is required"},
                "rule": {"type": "string", "example": "required"}
            }
        },
        "apperror.ErrorResponse": {
            "type": "object",
            "properties": {
                "details": {"type": "array", "items": {"$ref": "#/definitions/apperror.FieldError"}},
                "error": {"type": "string", "example": "Not Found"},
                "message": {"type": "string", "example": "Topic not found"},
                "statusCode": {"type": "integer", "example": 404}
            }
        },
        "response.Envelope": {
            "type": "object",
            "properties": {
                "data": {},
                "message": {"type": "string", "example": "Topic found"}
            }
        },
        "response.MessageOnly": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Topic \"Stoicism\" deleted successfully"}
            }
        },
        "auth.RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "username"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8, "maxLength": 72},
                "username": {"type": "string", "minLength": 3, "maxLength": 32}
            }
        },
        "auth.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "auth.LoginResponse": {
            "type": "object",
            "properties": {
                "jwt": {"type": "string"},
                "message": {"type": "string", "example": "Login successful"}
            }
        },
        "topics.CreateTopicRequest": {
            "type": "object",
            "required": ["tags", "title"],
            "properties": {
                "description": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "title": {"type": "string", "maxLength": 200},
                "visibility": {"type": "string", "enum": ["PUBLIC", "PRIVATE"]}
            }
        },
        "topics.UpdateTopicRequest": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "title": {"type": "string", "maxLength": 200},
                "visibility": {"type": "string", "enum": ["PUBLIC", "PRIVATE"]}
            }
        },
        "threads.CreateThreadRequest": {
            "type": "object",
            "required": ["starterMessage", "title", "topicId"],
            "properties": {
                "category": {"type": "string", "enum": ["DISCUSSION", "QUESTION", "ANNOUNCEMENT"]},
                "starterMessage": {"type": "string"},
                "title": {"type": "string", "maxLength": 200},
                "topicId": {"type": "string"}
            }
        },
        "threads.UpdateThreadRequest": {
            "type": "object",
            "properties": {
                "category": {"type": "string", "enum": ["DISCUSSION", "QUESTION", "ANNOUNCEMENT"]},
                "pinned": {"type": "boolean"},
                "starterMessage": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "contributions.CreateContributionRequest": {
            "type": "object",
            "required": ["content", "threadId"],
            "properties": {
                "content": {"type": "string"},
                "parentContributionId": {"type": "string"},
                "threadId": {"type": "string"}
            }
        },
        "contributions.UpdateContributionRequest": {
            "type": "object",
            "properties": {
                "content": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type 'Bearer YOUR_JWT_TOKEN' to authorize",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Forum API",
	Description:      "Topics, threads and nested contributions with JWT authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
