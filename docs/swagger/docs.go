// Package swagger provides API documentation
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Jan Team",
            "url": "https://github.com/janhq/jan-server"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/video-sessions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Video Sessions"],
                "summary": "List video sessions",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/videosessionres.SessionResponse"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Video Sessions"],
                "summary": "Create a video session",
                "parameters": [
                    {"description": "Session details", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/videosessionreq.CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/videosessionres.SessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/video-sessions/teacher/{teacherId}/pending": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Video Sessions"],
                "summary": "List a teacher's pending sessions",
                "parameters": [{"type": "string", "description": "Teacher ID", "name": "teacherId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/videosessionres.SessionResponse"}}}
                }
            }
        },
        "/video-sessions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Video Sessions"],
                "summary": "Get a video session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/videosessionres.SessionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Video Sessions"],
                "summary": "Remove a video session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/video-sessions/{id}/start": {
            "put": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Video Sessions"],
                "summary": "Start a video session",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Teacher display name", "name": "teacherName", "in": "query"},
                    {"type": "string", "description": "Student display name", "name": "studentName", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/videosessionres.SessionResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/video-sessions/{id}/complete": {
            "put": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Video Sessions"],
                "summary": "Complete a video session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/videosessionres.SessionResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/video-sessions/{id}/cancel": {
            "put": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Video Sessions"],
                "summary": "Cancel a video session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/videosessionres.SessionResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/video-sessions/{id}/student-token": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Video Sessions"],
                "summary": "Issue a student token",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Student display name", "name": "studentName", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/videosessionres.CredentialResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/video-sessions/{id}/teacher-token": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Video Sessions"],
                "summary": "Refresh the teacher token",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Teacher display name", "name": "teacherName", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/videosessionres.SessionResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/video-sessions/{id}/participants": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Video Sessions"],
                "summary": "List room participants",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/videosessionres.ParticipantResponse"}}}
                }
            }
        }
    },
    "definitions": {
        "responses.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "request_id": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "responses.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/responses.ErrorDetail"}
            }
        },
        "videosessionreq.CreateSessionRequest": {
            "type": "object",
            "properties": {
                "endTime": {"type": "string"},
                "roomName": {"type": "string", "example": "math-101"},
                "startTime": {"type": "string"},
                "studentId": {"type": "string", "example": "student-7"},
                "teacherId": {"type": "string", "example": "teacher-42"}
            }
        },
        "videosessionres.CredentialResponse": {
            "type": "object",
            "properties": {
                "expiresAt": {"type": "string"},
                "identity": {"type": "string"},
                "roomName": {"type": "string"},
                "token": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "videosessionres.ParticipantResponse": {
            "type": "object",
            "properties": {
                "identity": {"type": "string"},
                "joinedAt": {"type": "string"},
                "name": {"type": "string"},
                "state": {"type": "string"}
            }
        },
        "videosessionres.SessionResponse": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "endTime": {"type": "string"},
                "id": {"type": "string"},
                "isActive": {"type": "boolean"},
                "roomName": {"type": "string"},
                "roomToken": {"type": "string"},
                "startTime": {"type": "string"},
                "status": {"type": "string"},
                "studentId": {"type": "string"},
                "teacherId": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT Bearer token from Keycloak or the auth service",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3008",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Video Conference API",
	Description:      "Schedules teacher/student video sessions on LiveKit and issues participant tokens.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
