package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EduLegit Bridge API",
        "description": "Synchronizes host-platform submissions with the EduLegit document analysis service",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Submissions", "description": "Submission registration and sync state"},
        {"name": "Assignments", "description": "Assignment-level operations"},
        {"name": "Webhook", "description": "Inbound EduLegit callbacks"}
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
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
                    "200": {"description": "Ready"},
                    "503": {"description": "Dependencies unavailable"}
                }
            }
        },
        "/callback": {
            "post": {
                "tags": ["Webhook"],
                "summary": "EduLegit webhook endpoint",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/WebhookPayload"}}
                ],
                "responses": {
                    "200": {"description": "Processed; body is the affected record id or null"},
                    "400": {"description": "Unreadable or structurally invalid payload"},
                    "403": {"description": "Signature mismatch"}
                }
            }
        },
        "/api/v1/submissions/{ref}/initiate": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Register a submission with EduLegit",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "ref", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/InitiateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing references"}
                }
            }
        },
        "/api/v1/submissions/{ref}": {
            "get": {
                "tags": ["Submissions"],
                "summary": "Current sync state of a submission",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "ref", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown submission"}
                }
            },
            "delete": {
                "tags": ["Submissions"],
                "summary": "Remove the record of a deleted host submission",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "ref", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Unknown submission"}
                }
            }
        },
        "/api/v1/submissions/{ref}/report.pdf": {
            "get": {
                "tags": ["Submissions"],
                "summary": "Analysis report of a submission as PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "ref", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "PDF document"},
                    "404": {"description": "Unknown submission"}
                }
            }
        },
        "/api/v1/assignments/{ref}": {
            "delete": {
                "tags": ["Assignments"],
                "summary": "Remove all records of a deleted host assignment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "ref", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Unknown assignment"}
                }
            }
        },
        "/api/v1/assignments/{ref}/submissions.csv": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Submissions of an assignment as CSV",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "ref", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "CSV table"}
                }
            }
        }
    },
    "definitions": {
        "WebhookPayload": {
            "type": "object",
            "required": ["event", "data", "timestamp", "signature"],
            "properties": {
                "event": {"type": "string"},
                "data": {"type": "object"},
                "timestamp": {"type": "string"},
                "signature": {"type": "string"}
            }
        },
        "InitiateRequest": {
            "type": "object",
            "required": ["assignmentRef", "userRef"],
            "properties": {
                "assignmentRef": {"type": "integer"},
                "userRef": {"type": "integer"}
            }
        },
        "SubmissionView": {
            "type": "object",
            "properties": {
                "record": {"type": "object"},
                "viewUrl": {"type": "string"},
                "userLoginUrl": {"type": "string"},
                "pdfUrl": {"type": "string"},
                "htmlUrl": {"type": "string"},
                "txtUrl": {"type": "string"},
                "docxUrl": {"type": "string"}
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
                "data": {"$ref": "#/definitions/SubmissionView"},
                "error": {"$ref": "#/definitions/APIError"}
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
