// Package docs описание HTTP API в формате Swagger 2.0.
//
// Описание соответствует аннотациям обработчиков и пересобирается командой
// swag init -g cmd/tasktracker/main.go -o internal/docs.
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
        "/api/register": {
            "post": {
                "description": "Создаёт персональную базу задач и учётную запись пользователя.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Регистрация пользователя",
                "parameters": [
                    {
                        "description": "Имя пользователя и пароль",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/register.Request"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/register.Response"}},
                    "400": {"description": "Некорректный запрос", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Имя пользователя занято", "schema": {"$ref": "#/definitions/response.Response"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/response.Response"}},
                    "503": {"description": "База данных недоступна", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/login": {
            "post": {
                "description": "Проверяет имя и пароль, устанавливает cookie сессии.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Вход пользователя",
                "parameters": [
                    {
                        "description": "Учетные данные пользователя",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/login.Request"}
                    }
                ],
                "responses": {
                    "200": {"description": "Успешный вход", "schema": {"$ref": "#/definitions/login.Response"}},
                    "400": {"description": "Некорректный запрос", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Неверные учетные данные", "schema": {"$ref": "#/definitions/response.Response"}},
                    "429": {"description": "Слишком много попыток", "schema": {"$ref": "#/definitions/response.Response"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/logout": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Выход пользователя",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/me": {
            "get": {
                "security": [{"CookieAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Текущий пользователь",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/me.Response"}},
                    "401": {"description": "Нет сессии", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/tasks": {
            "get": {
                "security": [{"CookieAuth": []}],
                "description": "Возвращает все задачи текущего пользователя массивом документов.",
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Список задач",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Task"}}},
                    "401": {"description": "Нет сессии", "schema": {"$ref": "#/definitions/response.Response"}},
                    "503": {"description": "База данных недоступна", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "post": {
                "security": [{"CookieAuth": []}],
                "description": "Сохраняет документ задачи в базе пользователя. Ответ базы возвращается как есть.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Создание задачи",
                "parameters": [
                    {
                        "description": "Задача",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.Task"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/couchdb.DocResult"}},
                    "400": {"description": "Пустое или некорректное тело", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Нет сессии", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "put": {
                "security": [{"CookieAuth": []}],
                "description": "Заменяет документ задачи. Тело должно содержать _id и текущую _rev; устаревшая ревизия отклоняется базой (409).",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Изменение задачи",
                "parameters": [
                    {
                        "description": "Задача",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.Task"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/couchdb.DocResult"}},
                    "400": {"description": "Нет _id или _rev", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Нет сессии", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Конфликт ревизий", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "delete": {
                "security": [{"CookieAuth": []}],
                "description": "Удаляет задачу по _id и _rev из тела запроса.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Удаление задачи",
                "parameters": [
                    {
                        "description": "Задача с _id и _rev",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.Task"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/couchdb.DocResult"}},
                    "400": {"description": "Нет _id или _rev", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Нет сессии", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        }
    },
    "definitions": {
        "couchdb.DocResult": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "ok": {"type": "boolean"},
                "rev": {"type": "string"}
            }
        },
        "login.Request": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "login.Response": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "status": {"type": "string"},
                "userId": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "me.Response": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "status": {"type": "string"},
                "userId": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "models.Task": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "_rev": {"type": "string"},
                "completed": {"type": "boolean"},
                "createdAt": {"type": "string", "format": "date-time"},
                "deadline": {"type": "string", "example": "2026-01-31"},
                "description": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "register.Request": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string", "maxLength": 50}
            }
        },
        "register.Response": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "id": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"type": "string"},
                "status": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "CookieAuth": {
            "type": "apiKey",
            "name": "auth",
            "in": "cookie"
        }
    }
}`

// SwaggerInfo общие сведения об API, подставляются в шаблон при чтении.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Task Tracker API",
	Description:      "API для ведения личных списков задач. Каждый пользователь работает со своей базой документов.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
