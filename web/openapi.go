package web

import (
	"net/http"
)

// Spec represents an OpenAPI 3.0 specification.
type Spec struct {
	OpenAPI    string              `json:"openapi"`
	Info       Info                `json:"info"`
	Paths      map[string]PathItem `json:"paths"`
	Components Components          `json:"components"`
}

// Info provides API metadata.
type Info struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

// PathItem contains operations for a path.
type PathItem struct {
	Get  *Operation `json:"get,omitempty"`
	Post *Operation `json:"post,omitempty"`
}

// Operation represents an API operation.
type Operation struct {
	Tags        []string              `json:"tags,omitempty"`
	Summary     string                `json:"summary,omitempty"`
	OperationID string                `json:"operationId,omitempty"`
	Parameters  []Parameter           `json:"parameters,omitempty"`
	RequestBody *RequestBody          `json:"requestBody,omitempty"`
	Responses   map[string]Response   `json:"responses"`
	Security    []SecurityRequirement `json:"security,omitempty"`
}

// Parameter represents an API parameter.
type Parameter struct {
	Name        string  `json:"name"`
	In          string  `json:"in"`
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
	Schema      *Schema `json:"schema,omitempty"`
}

// RequestBody represents a request body.
type RequestBody struct {
	Description string               `json:"description,omitempty"`
	Required    bool                 `json:"required,omitempty"`
	Content     map[string]MediaType `json:"content"`
}

// Response represents an API response.
type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// MediaType represents a media type.
type MediaType struct {
	Schema *Schema `json:"schema,omitempty"`
}

// Schema represents a JSON Schema.
type Schema struct {
	Type       string             `json:"type,omitempty"`
	Format     string             `json:"format,omitempty"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	Enum       []string           `json:"enum,omitempty"`
	Ref        string             `json:"$ref,omitempty"`
	Nullable   bool               `json:"nullable,omitempty"`
}

// Components contains reusable schemas.
type Components struct {
	Schemas         map[string]*Schema        `json:"schemas,omitempty"`
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes,omitempty"`
}

// SecurityScheme defines an authentication method.
type SecurityScheme struct {
	Type         string `json:"type"`
	Scheme       string `json:"scheme,omitempty"`
	BearerFormat string `json:"bearerFormat,omitempty"`
	Description  string `json:"description,omitempty"`
}

// SecurityRequirement specifies required security schemes.
type SecurityRequirement map[string][]string

// OpenAPI serves the generated OpenAPI 3.0 document.
//
//	@Summary		OpenAPI specification
//	@Description	Returns the OpenAPI 3.0 document describing this API
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	Spec	"OpenAPI document"
//	@Router			/openapi.json [get]
func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	writeJSON(w, http.StatusOK, h.buildSpec())
}

// buildSpec assembles the OpenAPI document for the introspection API.
func (h *Handler) buildSpec() Spec {
	jsonContent := func(ref string) map[string]MediaType {
		return map[string]MediaType{
			"application/json": {Schema: &Schema{Ref: ref}},
		}
	}

	spec := Spec{
		OpenAPI: "3.0.3",
		Info: Info{
			Title:       "cmdgate introspection API",
			Description: "Command catalog, dry-run validation and service health for the cmdgate dispatcher.",
			Version:     h.version,
		},
		Paths: map[string]PathItem{
			"/healthz": {
				Get: &Operation{
					Tags:        []string{"Health"},
					Summary:     "Liveness check",
					OperationID: "getHealth",
					Responses: map[string]Response{
						"200": {Description: "Service is running", Content: jsonContent("#/components/schemas/Health")},
					},
				},
			},
			"/version": {
				Get: &Operation{
					Tags:        []string{"System"},
					Summary:     "Service version",
					OperationID: "getVersion",
					Responses: map[string]Response{
						"200": {Description: "Version information", Content: jsonContent("#/components/schemas/Version")},
					},
				},
			},
			"/commands": {
				Get: &Operation{
					Tags:        []string{"Commands"},
					Summary:     "List registered commands",
					OperationID: "listCommands",
					Responses: map[string]Response{
						"200": {Description: "Command catalog", Content: jsonContent("#/components/schemas/Catalog")},
					},
				},
			},
			"/commands/{name}": {
				Get: &Operation{
					Tags:        []string{"Commands"},
					Summary:     "Get a command",
					OperationID: "getCommand",
					Parameters: []Parameter{
						{Name: "name", In: "path", Required: true, Description: "Command name or alias", Schema: &Schema{Type: "string"}},
					},
					Responses: map[string]Response{
						"200": {Description: "Command detail", Content: jsonContent("#/components/schemas/Command")},
						"404": {Description: "Unknown command", Content: jsonContent("#/components/schemas/Error")},
					},
				},
			},
			"/commands/{name}/validate": {
				Post: &Operation{
					Tags:        []string{"Commands"},
					Summary:     "Validate command input",
					OperationID: "validateCommand",
					Parameters: []Parameter{
						{Name: "name", In: "path", Required: true, Description: "Command name or alias", Schema: &Schema{Type: "string"}},
					},
					RequestBody: &RequestBody{
						Required: true,
						Content: map[string]MediaType{
							"application/json": {Schema: &Schema{
								Type: "object",
								Properties: map[string]*Schema{
									"input": {Type: "string"},
								},
								Required: []string{"input"},
							}},
						},
					},
					Responses: map[string]Response{
						"200": {Description: "Validation result", Content: jsonContent("#/components/schemas/ValidationResult")},
						"400": {Description: "Malformed request body", Content: jsonContent("#/components/schemas/Error")},
						"401": {Description: "Missing or invalid bearer token", Content: jsonContent("#/components/schemas/Error")},
						"404": {Description: "Unknown command", Content: jsonContent("#/components/schemas/Error")},
					},
					Security: []SecurityRequirement{{"BearerAuth": {}}},
				},
			},
		},
		Components: Components{
			Schemas: map[string]*Schema{
				"Health": {
					Type: "object",
					Properties: map[string]*Schema{
						"status": {Type: "string"},
					},
				},
				"Version": {
					Type: "object",
					Properties: map[string]*Schema{
						"version": {Type: "string"},
						"service": {Type: "string"},
					},
				},
				"Catalog": {
					Type: "object",
					Properties: map[string]*Schema{
						"prefix":   {Type: "string"},
						"count":    {Type: "integer"},
						"commands": {Type: "array", Items: &Schema{Ref: "#/components/schemas/CommandSummary"}},
					},
				},
				"CommandSummary": {
					Type: "object",
					Properties: map[string]*Schema{
						"name":        {Type: "string"},
						"description": {Type: "string"},
						"aliases":     {Type: "array", Items: &Schema{Type: "string"}},
						"usage":       {Type: "string"},
					},
					Required: []string{"name", "usage"},
				},
				"Command": {
					Type: "object",
					Properties: map[string]*Schema{
						"name":        {Type: "string"},
						"description": {Type: "string"},
						"aliases":     {Type: "array", Items: &Schema{Type: "string"}},
						"usage":       {Type: "string"},
						"options":     {Type: "array", Items: &Schema{Ref: "#/components/schemas/Option"}},
					},
					Required: []string{"name", "usage"},
				},
				"Option": {
					Type: "object",
					Properties: map[string]*Schema{
						"name":        {Type: "string"},
						"description": {Type: "string"},
						"type":        {Type: "string", Enum: []string{"string", "number", "boolean", "mentionable", "custom"}},
						"required":    {Type: "boolean"},
						"min":         {Type: "number", Nullable: true},
						"max":         {Type: "number", Nullable: true},
						"choices":     {Type: "array", Items: &Schema{Type: "string"}},
					},
					Required: []string{"name", "type", "required"},
				},
				"ValidationResult": {
					Type: "object",
					Properties: map[string]*Schema{
						"command": {Type: "string"},
						"ok":      {Type: "boolean"},
						"errors":  {Type: "array", Items: &Schema{Ref: "#/components/schemas/ValidationError"}},
						"options": {Type: "array", Items: &Schema{Ref: "#/components/schemas/OptionValue"}},
					},
					Required: []string{"command", "ok", "options"},
				},
				"ValidationError": {
					Type: "object",
					Properties: map[string]*Schema{
						"option":  {Type: "string"},
						"raw":     {Type: "string"},
						"code":    {Type: "string", Enum: []string{"syntax", "required", "arity", "type", "range", "choice", "custom"}},
						"message": {Type: "string"},
					},
					Required: []string{"code", "message"},
				},
				"OptionValue": {
					Type: "object",
					Properties: map[string]*Schema{
						"name":    {Type: "string"},
						"type":    {Type: "string"},
						"raw":     {Type: "string"},
						"set":     {Type: "boolean"},
						"str":     {Type: "string"},
						"num":     {Type: "number"},
						"bool":    {Type: "boolean"},
						"mention": {Type: "object"},
					},
					Required: []string{"name", "type", "set"},
				},
				"Error": {
					Type: "object",
					Properties: map[string]*Schema{
						"error": {
							Type: "object",
							Properties: map[string]*Schema{
								"code":    {Type: "string"},
								"message": {Type: "string"},
							},
						},
					},
				},
			},
			SecuritySchemes: map[string]SecurityScheme{
				"BearerAuth": {
					Type:        "http",
					Scheme:      "bearer",
					Description: "Admin token configured via web.admin_token_hash",
				},
			},
		},
	}

	return spec
}
