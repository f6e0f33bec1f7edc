package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Neetrino Academy API",
        "description": "Learning management API: courses, groups, schedules and payments",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, refresh and logout"},
        {"name": "Users", "description": "Admin user management"},
        {"name": "Courses", "description": "Courses, modules and lessons"},
        {"name": "Groups", "description": "Student groups and membership"},
        {"name": "Schedule", "description": "Weekly rules, expansion and the calendar"},
        {"name": "Assessment", "description": "Quizzes, assignments and grading"},
        {"name": "Chat", "description": "Group chat"},
        {"name": "Notifications", "description": "Per-user notifications"},
        {"name": "Payments", "description": "Payments and receipts"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Tokens issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/admin/groups/{id}/schedule/generate": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Expand a group's weekly rules into calendar events",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Expansion summary with created events and conflicts"},
                    "400": {"description": "Invalid window"},
                    "404": {"description": "Group or rules missing"}
                }
            }
        },
        "/calendar": {
            "get": {
                "tags": ["Schedule"],
                "summary": "List calendar events",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Events"}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"type": "object"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
