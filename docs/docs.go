// Package docs registers the OpenAPI document served at /swagger in dev mode.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"Bearer": []}],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Issue a JWT",
                "security": [],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginResponse"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Error"}}}
            }
        },
        "/books": {
            "get": {
                "tags": ["books"],
                "summary": "List books",
                "security": [],
                "parameters": [{"in": "query", "name": "user_id", "type": "string", "required": false}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Book"}}}}
            },
            "post": {
                "tags": ["books"],
                "summary": "Add a book (Admin)",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/BookRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Book"}}}
            }
        },
        "/books/{id}": {
            "get": {"tags": ["books"], "summary": "Get a book", "security": [], "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Book"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}}},
            "put": {"tags": ["books"], "summary": "Replace a book (Admin)", "parameters": [{"$ref": "#/parameters/id"}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/BookRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Book"}}}},
            "delete": {"tags": ["books"], "summary": "Delete a book and its loans (Admin)", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/loans": {
            "get": {"tags": ["loans"], "summary": "List loans", "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Loan"}}}}},
            "post": {"tags": ["loans"], "summary": "Create a loan", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoanRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Loan"}}}}
        },
        "/loans/pending": {
            "get": {"tags": ["loans"], "summary": "List uncleared loans", "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Loan"}}}}}
        },
        "/loans/export": {
            "get": {
                "tags": ["loans"],
                "summary": "Export loans as CSV",
                "produces": ["text/csv"],
                "parameters": [{"in": "query", "name": "encoding", "type": "string", "enum": ["utf8", "utf8bom", "sjis"], "required": false}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/loans/{id}": {
            "put": {"tags": ["loans"], "summary": "Replace a loan", "parameters": [{"$ref": "#/parameters/id"}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoanRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Loan"}}}},
            "delete": {"tags": ["loans"], "summary": "Delete a loan (Admin)", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/loans/{id}/clear": {
            "post": {"tags": ["loans"], "summary": "Mark a loan cleared (Admin)", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/loans/{id}/mark-pending": {
            "post": {"tags": ["loans"], "summary": "Mark a loan pending (Admin)", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/student": {
            "get": {"tags": ["students"], "summary": "List students", "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Student"}}}}},
            "post": {"tags": ["students"], "summary": "Add a student (Admin)", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/Student"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/Student"}}}}
        },
        "/student/{id}": {
            "get": {"tags": ["students"], "summary": "Get a student", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Student"}}}},
            "put": {"tags": ["students"], "summary": "Replace a student (Admin)", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/Student"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Student"}}}},
            "delete": {"tags": ["students"], "summary": "Delete a student and their loans (Admin)", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/dashboard": {
            "get": {"tags": ["dashboard"], "summary": "Totals for the caller's role", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Dashboard"}}}}
        },
        "/account/me": {
            "get": {"tags": ["account"], "summary": "Current account", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Account"}}}},
            "put": {"tags": ["account"], "summary": "Update the current account", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/Account"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Account"}}}}
        }
    },
    "parameters": {
        "id": {"in": "path", "name": "id", "type": "integer", "format": "int64", "required": true}
    },
    "definitions": {
        "Error": {"type": "object", "properties": {"error": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}}}}},
        "LoginRequest": {"type": "object", "required": ["username", "password"], "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "LoginResponse": {"type": "object", "properties": {"token": {"type": "string"}}},
        "BookRequest": {"type": "object", "required": ["title"], "properties": {"user_id": {"type": "string"}, "title": {"type": "string"}, "author": {"type": "string"}, "genre": {"type": "string"}, "isbn": {"type": "string"}, "domain": {"type": "string"}}},
        "Book": {"type": "object", "properties": {"doc_id": {"type": "string"}, "book_id": {"type": "integer"}, "user_id": {"type": "string"}, "title": {"type": "string"}, "author": {"type": "string"}, "genre": {"type": "string"}, "isbn": {"type": "string"}, "domain": {"type": "string"}}},
        "LoanRequest": {"type": "object", "required": ["user_id", "person_name", "student_id", "from_date", "to_date"], "properties": {"user_id": {"type": "string"}, "person_name": {"type": "string"}, "student_id": {"type": "string"}, "book_id": {"type": "integer"}, "book_name": {"type": "string"}, "from_date": {"type": "string", "example": "2024-01-01"}, "to_date": {"type": "string", "example": "2024-01-11"}, "price_per_day": {"type": "string", "example": "10"}, "is_cleared": {"type": "boolean"}}},
        "Loan": {"type": "object", "properties": {"doc_id": {"type": "string"}, "loan_id": {"type": "integer"}, "user_id": {"type": "string"}, "person_name": {"type": "string"}, "student_id": {"type": "string"}, "book_id": {"type": "integer"}, "book_name": {"type": "string"}, "from_date": {"type": "string"}, "to_date": {"type": "string"}, "price_per_day": {"type": "string"}, "is_cleared": {"type": "boolean"}, "days": {"type": "integer"}, "amount": {"type": "string"}}},
        "Student": {"type": "object", "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "role": {"type": "string"}, "username": {"type": "string"}, "email": {"type": "string"}, "phone_number": {"type": "string"}, "address": {"type": "string"}}},
        "Dashboard": {"type": "object", "properties": {"total_books": {"type": "integer"}, "total_dues": {"type": "string"}, "pending_loans": {"type": "integer"}}},
        "Account": {"type": "object", "properties": {"id": {"type": "integer"}, "name": {"type": "string"}, "email": {"type": "string"}, "mobile": {"type": "string"}, "department": {"type": "string"}, "date_of_birth": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Library API",
	Description:      "Books, loans, students and dashboards for the library frontend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
