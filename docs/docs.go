// Package docs registers the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/check_payments": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Emails every owner of a payment due tomorrow. Meant for an external daily scheduler.",
                "produces": ["text/plain"],
                "tags": ["reminders"],
                "summary": "Run the payment reminder sweep",
                "responses": {
                    "200": {"description": "confirmation with counts", "schema": {"type": "string"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "string"}}
                }
            }
        },
        "/api/v1/dashboard": {
            "get": {
                "security": [{"SessionCookie": []}],
                "description": "Current-month expenses, payments due in the next 7 days and totals per category. 'date' overrides the reference day.",
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Dashboard data",
                "parameters": [
                    {"type": "string", "example": "2024-06-10", "description": "Reference date (YYYY-MM-DD)", "name": "date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/expenses": {
            "get": {
                "security": [{"SessionCookie": []}],
                "description": "Newest first. Both bounds are optional and inclusive.",
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "List expenses",
                "parameters": [
                    {"type": "string", "example": "2024-06-01", "description": "Start date (YYYY-MM-DD)", "name": "from", "in": "query"},
                    {"type": "string", "example": "2024-06-30", "description": "End date (YYYY-MM-DD)", "name": "to", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, expenses", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "post": {
                "security": [{"SessionCookie": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Add expense",
                "parameters": [
                    {"description": "Expense", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.AddExpenseRequest"}}
                ],
                "responses": {
                    "201": {"description": "id", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handlers.AddExpenseRequest": {
            "type": "object",
            "properties": {
                "description": {"type": "string", "example": "Office rent"},
                "amount": {"description": "Decimal amount, at most two fractional digits are kept", "type": "string", "example": "850.00"},
                "type": {"description": "personal or business", "type": "string", "example": "business"},
                "date": {"description": "YYYY-MM-DD", "type": "string", "example": "2024-06-01"},
                "payment_date": {"description": "Optional YYYY-MM-DD", "type": "string", "example": "2024-06-05"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"},
        "SessionCookie": {"type": "apiKey", "name": "Cookie", "in": "header", "description": "session_token=<token>"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Expense Tracker API",
	Description:      "Expense ledger with payment reminders.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
