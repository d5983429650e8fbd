// Package docs 注册 Swagger 文档，与 handler 注释中的 @Router 保持一致。
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
                "tags": ["系统"],
                "summary": "健康检查",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/users": {
            "get": {
                "tags": ["用户"],
                "summary": "检索用户",
                "parameters": [
                    {"type": "string", "description": "perfect_match | forward_match | backward_match | partial_match", "name": "search", "in": "query"},
                    {"type": "string", "description": "关键字", "name": "word", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["用户"],
                "summary": "注册用户",
                "parameters": [
                    {"description": "注册信息", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/v1/sessions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["用户"],
                "summary": "登录并获取访问令牌",
                "parameters": [
                    {"description": "登录信息", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/v1/users/{id}": {
            "get": {
                "tags": ["用户"],
                "summary": "用户详情",
                "parameters": [{"type": "string", "description": "用户ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "patch": {
                "tags": ["用户"],
                "summary": "更新资料",
                "parameters": [
                    {"type": "string", "description": "用户ID", "name": "id", "in": "path", "required": true},
                    {"description": "资料", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "delete": {
                "tags": ["用户"],
                "summary": "注销账号（级联删除书籍、评论、收藏、关注关系等）",
                "parameters": [{"type": "string", "description": "用户ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/users/{id}/follow": {
            "post": {
                "produces": ["application/json"],
                "tags": ["关系链"],
                "summary": "关注用户",
                "parameters": [{"type": "string", "description": "被关注用户ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["关系链"],
                "summary": "取消关注",
                "parameters": [{"type": "string", "description": "被关注用户ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/v1/users/{id}/following": {
            "get": {
                "tags": ["关系链"],
                "summary": "查询关注列表",
                "parameters": [
                    {"type": "string", "description": "用户ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "default": 1, "description": "页码", "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "description": "每页数量", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/users/{id}/followers": {
            "get": {
                "tags": ["关系链"],
                "summary": "查询粉丝列表",
                "parameters": [
                    {"type": "string", "description": "用户ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "default": 1, "description": "页码", "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "description": "每页数量", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/users/{id}/following/{other}": {
            "get": {
                "tags": ["关系链"],
                "summary": "是否关注",
                "parameters": [
                    {"type": "string", "description": "用户ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "对方用户ID", "name": "other", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/users/{id}/profile_image": {
            "delete": {
                "tags": ["用户"],
                "summary": "删除头像",
                "parameters": [{"type": "string", "description": "用户ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "get": {
                "tags": ["用户"],
                "summary": "头像地址",
                "parameters": [{"type": "string", "description": "用户ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            },
            "put": {
                "consumes": ["multipart/form-data"],
                "tags": ["用户"],
                "summary": "上传头像",
                "parameters": [
                    {"type": "string", "description": "用户ID", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "头像", "name": "image", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/v1/users/{id}/books": {
            "get": {
                "tags": ["书籍"],
                "summary": "用户书籍列表",
                "parameters": [
                    {"type": "string", "description": "用户ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "default": 1, "description": "页码", "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "description": "每页数量", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/books": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["书籍"],
                "summary": "发布书籍",
                "parameters": [{"description": "书籍", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.bookRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/v1/books/{id}": {
            "get": {
                "tags": ["书籍"],
                "summary": "书籍详情",
                "parameters": [{"type": "string", "description": "书籍ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "patch": {
                "tags": ["书籍"],
                "summary": "修改书籍（仅作者）",
                "parameters": [
                    {"type": "string", "description": "书籍ID", "name": "id", "in": "path", "required": true},
                    {"description": "书籍", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.bookRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "delete": {
                "tags": ["书籍"],
                "summary": "删除书籍（仅作者）",
                "parameters": [{"type": "string", "description": "书籍ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/books/{id}/comments": {
            "post": {
                "tags": ["书籍"],
                "summary": "发表评论",
                "parameters": [
                    {"type": "string", "description": "书籍ID", "name": "id", "in": "path", "required": true},
                    {"description": "评论", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.commentRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/comments/{id}": {
            "delete": {
                "tags": ["书籍"],
                "summary": "删除评论（仅评论者）",
                "parameters": [{"type": "string", "description": "评论ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/books/{id}/favorite": {
            "post": {
                "tags": ["书籍"],
                "summary": "收藏书籍",
                "parameters": [{"type": "string", "description": "书籍ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            },
            "delete": {
                "tags": ["书籍"],
                "summary": "取消收藏",
                "parameters": [{"type": "string", "description": "书籍ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/rooms": {
            "post": {
                "tags": ["私信"],
                "summary": "打开私信房间",
                "parameters": [{"description": "对方用户", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.openRoomRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/v1/rooms/{id}/chats": {
            "get": {
                "tags": ["私信"],
                "summary": "房间消息列表",
                "parameters": [{"type": "string", "description": "房间ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            },
            "post": {
                "tags": ["私信"],
                "summary": "发送私信",
                "parameters": [
                    {"type": "string", "description": "房间ID", "name": "id", "in": "path", "required": true},
                    {"description": "消息", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.chatRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        }
    },
    "definitions": {
        "handler.registerRequest": {
            "type": "object",
            "required": ["email", "name", "password"],
            "properties": {
                "email": {"type": "string"},
                "introduction": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.updateProfileRequest": {
            "type": "object",
            "properties": {
                "introduction": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "handler.bookRequest": {
            "type": "object",
            "properties": {
                "body": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "handler.commentRequest": {
            "type": "object",
            "properties": {
                "comment": {"type": "string"}
            }
        },
        "handler.openRoomRequest": {
            "type": "object",
            "required": ["user_id"],
            "properties": {
                "user_id": {"type": "string"}
            }
        },
        "handler.chatRequest": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {},
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Bookers API",
	Description:      "书籍分享与用户关系链服务",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
