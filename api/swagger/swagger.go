package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TutorHub API",
        "description": "Tutoring marketplace: learner and teacher accounts, bookings and reviews",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"},
        "SessionCookie": {"type": "apiKey", "name": "Cookie", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Session and token login for users and teachers"},
        {"name": "Users", "description": "Learner and administrator accounts"},
        {"name": "Teachers", "description": "Tutor directory and profiles"},
        {"name": "Bookings", "description": "Lesson requests and their lifecycle"},
        {"name": "Reviews", "description": "One review per learner and teacher"},
        {"name": "Health", "description": "Liveness, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {"tags": ["Health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {"tags": ["Health"], "summary": "Readiness probe", "responses": {"200": {"description": "Ready"}, "503": {"description": "A dependency is unavailable"}}}
        },
        "/metrics": {
            "get": {"tags": ["Health"], "summary": "Prometheus metrics", "produces": ["text/plain"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/users/register": {
            "post": {
                "tags": ["Users"],
                "summary": "Register a user",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterUserRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/users/auth/session/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Open a user session",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "OK, sets the session cookie", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/users/auth/token/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Issue a user bearer token",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/users/logout": {
            "post": {"tags": ["Authentication"], "summary": "Destroy the user session", "security": [{"SessionCookie": []}, {"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/v1/users/profile": {
            "get": {
                "tags": ["Users"],
                "summary": "Current user with bookings and reviews",
                "security": [{"SessionCookie": []}, {"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthenticated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/users/forgot-password": {
            "post": {
                "tags": ["Users"],
                "summary": "Mail a password reset link",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"email": {"type": "string"}}}}],
                "responses": {"202": {"description": "Accepted"}, "404": {"description": "Unknown email", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/users/reset-password/{token}": {
            "get": {
                "tags": ["Users"],
                "summary": "Check a reset token",
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Token used or expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/users/reset-password": {
            "post": {
                "tags": ["Users"],
                "summary": "Set a new password with a reset token",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"resetToken": {"type": "string"}, "password": {"type": "string"}}}}],
                "responses": {"204": {"description": "No Content"}, "409": {"description": "Token used or expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/users/verify-email/request": {
            "post": {"tags": ["Users"], "summary": "Mail an email verification link", "security": [{"SessionCookie": []}, {"BearerAuth": []}], "responses": {"202": {"description": "Accepted"}}}
        },
        "/api/v1/users/verify-email": {
            "post": {
                "tags": ["Users"],
                "summary": "Confirm an email address",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"token": {"type": "string"}}}}],
                "responses": {"204": {"description": "No Content"}, "401": {"description": "Token invalid or expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "security": [{"SessionCookie": []}, {"BearerAuth": []}],
                "parameters": [{"name": "page", "in": "query", "type": "integer"}, {"name": "pageSize", "in": "query", "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create a user with a role",
                "security": [{"SessionCookie": []}, {"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/users/{id}": {
            "get": {"tags": ["Users"], "summary": "Get a user", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "patch": {"tags": ["Users"], "summary": "Update a user", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateUserRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "delete": {"tags": ["Users"], "summary": "Delete a user", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/v1/teachers/register": {
            "post": {
                "tags": ["Teachers"],
                "summary": "Register a teacher",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterTeacherRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/teachers/auth/session/login": {
            "post": {"tags": ["Authentication"], "summary": "Open a teacher session", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}], "responses": {"200": {"description": "OK, sets the session cookie"}}}
        },
        "/api/v1/teachers/auth/token/login": {
            "post": {"tags": ["Authentication"], "summary": "Issue a teacher bearer token", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/teachers/logout": {
            "post": {"tags": ["Authentication"], "summary": "Destroy the teacher session", "security": [{"SessionCookie": []}, {"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/v1/teachers/profile": {
            "get": {"tags": ["Teachers"], "summary": "Current teacher with bookings and reviews", "security": [{"SessionCookie": []}, {"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/teachers": {
            "get": {"tags": ["Teachers"], "summary": "List teachers", "responses": {"200": {"description": "OK; meta.cache_hit reports a cached answer", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/teachers/{id}": {
            "get": {"tags": ["Teachers"], "summary": "Get a teacher with reviews", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "patch": {"tags": ["Teachers"], "summary": "Update a teacher", "security": [{"SessionCookie": []}, {"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateTeacherRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "delete": {"tags": ["Teachers"], "summary": "Delete a teacher", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/v1/teachers/{id}/reviews": {
            "get": {"tags": ["Reviews"], "summary": "List a teacher's reviews", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Reviews"], "summary": "Review a teacher", "security": [{"SessionCookie": []}, {"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateReviewRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Already reviewed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/bookings": {
            "get": {"tags": ["Bookings"], "summary": "Bookings of the caller", "security": [{"SessionCookie": []}, {"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Bookings"], "summary": "Book a teacher", "security": [{"SessionCookie": []}, {"BearerAuth": []}], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookingRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/bookings/all": {
            "get": {"tags": ["Bookings"], "summary": "Every booking", "security": [{"BearerAuth": []}], "parameters": [{"name": "status", "in": "query", "type": "string"}, {"name": "page", "in": "query", "type": "integer"}, {"name": "pageSize", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/bookings/export": {
            "get": {"tags": ["Bookings"], "summary": "Export bookings", "security": [{"BearerAuth": []}], "produces": ["text/csv", "application/pdf"], "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}, {"name": "status", "in": "query", "type": "string"}], "responses": {"200": {"description": "Attachment"}, "422": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/bookings/{id}": {
            "get": {"tags": ["Bookings"], "summary": "Get a booking", "security": [{"SessionCookie": []}, {"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "delete": {"tags": ["Bookings"], "summary": "Delete a pending booking", "security": [{"SessionCookie": []}, {"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}, "409": {"description": "Not pending", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/api/v1/bookings/{id}/status": {
            "patch": {"tags": ["Bookings"], "summary": "Move a booking through its lifecycle", "security": [{"SessionCookie": []}, {"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateBookingStatusRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Wrong party", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Illegal transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "userName": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["password"]
        },
        "RegisterUserRequest": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "phoneNumber": {"type": "string"},
                "userName": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["firstName", "lastName", "phoneNumber", "userName", "email", "password"]
        },
        "CreateUserRequest": {
            "type": "object",
            "allOf": [{"$ref": "#/definitions/RegisterUserRequest"}],
            "properties": {"role": {"type": "string", "enum": ["superadmin", "admin", "user"]}},
            "required": ["role"]
        },
        "UpdateUserRequest": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "phoneNumber": {"type": "string"},
                "role": {"type": "string", "enum": ["superadmin", "admin", "user"]}
            }
        },
        "RegisterTeacherRequest": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "userName": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "subjects": {"type": "array", "items": {"type": "string"}},
                "area": {"type": "string"},
                "availability": {"type": "array", "items": {"type": "string"}},
                "costPerHour": {"type": "number"},
                "qualifications": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["firstName", "lastName", "userName", "email", "password", "subjects", "area", "availability", "qualifications"]
        },
        "UpdateTeacherRequest": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "subjects": {"type": "array", "items": {"type": "string"}},
                "area": {"type": "string"},
                "availability": {"type": "array", "items": {"type": "string"}},
                "costPerHour": {"type": "number"},
                "qualifications": {"type": "array", "items": {"type": "string"}}
            }
        },
        "TimeSlot": {
            "type": "object",
            "properties": {
                "day": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"}
            }
        },
        "CreateBookingRequest": {
            "type": "object",
            "properties": {
                "teacher": {"type": "string"},
                "date": {"type": "string", "format": "date-time"},
                "timeslot": {"$ref": "#/definitions/TimeSlot"},
                "grade": {"type": "string"},
                "area": {"type": "string"},
                "subject": {"type": "string"}
            },
            "required": ["teacher", "date", "grade", "area", "subject"]
        },
        "UpdateBookingStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["pending", "accepted", "cancelled", "closed"]},
                "reason": {"type": "string"}
            },
            "required": ["status"]
        },
        "CreateReviewRequest": {
            "type": "object",
            "properties": {
                "rating": {"type": "integer", "minimum": 1, "maximum": 5},
                "comment": {"type": "string"}
            },
            "required": ["rating", "comment"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
