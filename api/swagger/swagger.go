package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Slot Booking API",
        "description": "Faculty appointment slots, schedule materialization and admin roster",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Slots", "description": "Slot listing and maintenance"},
        {"name": "Bookings", "description": "Reserve and release slots"},
        {"name": "Schedules", "description": "Materialize weekday templates onto dates"},
        {"name": "Templates", "description": "Weekday schedule templates"},
        {"name": "Admin", "description": "Authorized admin email roster"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/slots": {
            "get": {
                "tags": ["Slots"],
                "summary": "List slots for a date or a half-open range",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "description": "YYYY-MM-DD"},
                    {"name": "from", "in": "query", "type": "string", "description": "RFC3339, used with to"},
                    {"name": "to", "in": "query", "type": "string", "description": "RFC3339, exclusive"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/slots/mine": {
            "get": {
                "tags": ["Slots"],
                "summary": "List the caller's upcoming bookings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/slots/{id}": {
            "get": {
                "tags": ["Slots"],
                "summary": "Get one slot",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Slots"],
                "summary": "Update slot metadata (admin)",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SlotUpdate"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Slots"],
                "summary": "Delete a slot (admin)",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/slots/{id}/book": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Reserve a slot for the caller",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already booked"},
                    "412": {"description": "Not bookable"}
                }
            }
        },
        "/slots/{id}/cancel": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Release the caller's reservation",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Cancelled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Not booked or not owner"}
                }
            }
        },
        "/schedules/materialize": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Expand the weekday template onto a date (admin)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MaterializeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No template for weekday"},
                    "409": {"description": "Date already materialized"}
                }
            }
        },
        "/schedules": {
            "delete": {
                "tags": ["Schedules"],
                "summary": "Delete all slots in an inclusive date range (admin)",
                "parameters": [
                    {"name": "start", "in": "query", "type": "string", "required": true},
                    {"name": "end", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/templates": {
            "get": {
                "tags": ["Templates"],
                "summary": "List weekday templates (admin)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/templates/seed": {
            "post": {
                "tags": ["Templates"],
                "summary": "Create default weekday templates where none exist (admin)",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/templates/{day}": {
            "get": {
                "tags": ["Templates"],
                "summary": "Get the template for one weekday (admin)",
                "parameters": [
                    {"name": "day", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Templates"],
                "summary": "Replace the template for one weekday (admin)",
                "parameters": [
                    {"name": "day", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveTemplateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Templates"],
                "summary": "Delete the template for one weekday (admin)",
                "parameters": [
                    {"name": "day", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/admin/emails": {
            "get": {
                "tags": ["Admin"],
                "summary": "List authorized admin emails (admin)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Admin"],
                "summary": "Authorize an email for admin access (admin)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddEmailRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already authorized"}
                }
            }
        },
        "/admin/emails/{email}": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Revoke an email's admin authorization (admin)",
                "parameters": [
                    {"name": "email", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Revoked"}
                }
            }
        }
    },
    "definitions": {
        "Slot": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "slot_at": {"type": "string", "format": "date-time"},
                "duration_minutes": {"type": "integer"},
                "course_name": {"type": "string"},
                "faculty_name": {"type": "string"},
                "room_number": {"type": "string"},
                "is_bookable": {"type": "boolean"},
                "is_booked": {"type": "boolean"},
                "booked_by": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "SlotUpdate": {
            "type": "object",
            "properties": {
                "course_name": {"type": "string"},
                "faculty_name": {"type": "string"},
                "room_number": {"type": "string"},
                "duration_minutes": {"type": "integer"},
                "is_bookable": {"type": "boolean"}
            }
        },
        "MaterializeRequest": {
            "type": "object",
            "required": ["date"],
            "properties": {
                "date": {"type": "string", "example": "2026-09-07"}
            }
        },
        "TemplateEntry": {
            "type": "object",
            "properties": {
                "start_time": {"type": "string", "example": "09:00"},
                "duration_minutes": {"type": "integer"},
                "course_name": {"type": "string"},
                "faculty_name": {"type": "string"},
                "room": {"type": "string"},
                "is_bookable": {"type": "boolean"}
            }
        },
        "SaveTemplateRequest": {
            "type": "object",
            "required": ["entries"],
            "properties": {
                "entries": {"type": "array", "items": {"$ref": "#/definitions/TemplateEntry"}}
            }
        },
        "AddEmailRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"}
            }
        },
        "AuthorizedEmail": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "added_at": {"type": "string", "format": "date-time"},
                "linked_user_id": {"type": "string"},
                "sync_status": {"type": "string", "enum": ["PENDING", "SUCCESS", "ERROR"]}
            }
        },
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
