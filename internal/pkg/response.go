package pkg

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/middleware"
)

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure. Fields is only present for validation
// failures and maps JSON field names to the rule that rejected them.
type ErrorDetail struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	RequestID string            `json:"requestId,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// BulkDeleteRequest is the body accepted by every bulk delete endpoint.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=100,dive,uuid_rfc4122"`
}

// CanonicalIDs returns IDs in canonical lowercase form.
func (r BulkDeleteRequest) CanonicalIDs() []string {
	ids := make([]string, len(r.IDs))
	for i, id := range r.IDs {
		ids[i] = CanonicalUUID(id)
	}
	return ids
}

const validationCode = "VALIDATION_ERROR"

// OK sends a 200 JSON response with data as the body.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 JSON response with data as the body.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// List sends one page of results as {"data": [...], "meta": {...}}.
func List[T any](c *gin.Context, result *domain.ListResult[T]) {
	c.JSON(http.StatusOK, result)
}

// Error sends a JSON error response derived from err. The HTTP status and
// wire code come from the AppError code; anything else is a 500 whose detail
// is attached to the gin context for the request logger but never sent.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)

	msg := domain.ErrInternal.Message
	var appErr *domain.AppError
	if errors.As(err, &appErr) && appErr.Code != domain.CodeInternal {
		msg = appErr.Message
	}

	_ = c.Error(err)
	c.JSON(status, ErrorResponse{Error: ErrorDetail{
		Code:      domain.ErrorCodeName(err),
		Message:   msg,
		RequestID: middleware.GetRequestID(c),
	}})
}

// ValidationError sends a 400 response. Validator failures are reported per
// field; any other binding error is reported with its message only.
func ValidationError(c *gin.Context, err error) {
	validationErrorWithType(c, err, nil)
}

// BindJSON binds and validates the JSON body into obj. On failure it sends a
// validation error response and returns false.
//
//	if !pkg.BindJSON(c, &req) { return }
func BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return true
}

// BindQuery binds and validates query parameters into obj, like BindJSON.
func BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return true
}

// PathUUID returns the canonical form of the UUID path parameter name.
// It sends a 400 and returns false when the parameter is not a UUID.
func PathUUID(c *gin.Context, name string) (string, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		writeFieldErrors(c, "invalid path parameter", map[string]string{name: "uuid"})
		return "", false
	}
	return id.String(), true
}

// OptionalQueryUUID is PathUUID for an optional query parameter. An absent or
// empty parameter yields "" and true.
func OptionalQueryUUID(c *gin.Context, name string) (string, bool) {
	raw := c.Query(name)
	if raw == "" {
		return "", true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeFieldErrors(c, "invalid query parameter", map[string]string{name: "uuid"})
		return "", false
	}
	return id.String(), true
}

// CanonicalUUID returns s in canonical lowercase hyphenated form. Values that
// do not parse are returned unchanged; binding has rejected them already.
func CanonicalUUID(s string) string {
	if id, err := uuid.Parse(s); err == nil {
		return id.String()
	}
	return s
}

// validationErrorWithType sends a 400 validation error response.
// When obj is non-nil, field names are taken from its JSON tags.
func validationErrorWithType(c *gin.Context, err error, obj any) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		writeFieldErrors(c, "invalid request: "+err.Error(), nil)
		return
	}

	jsonTags := buildJSONTagMap(obj)

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fieldName(fe, jsonTags)] = ruleName(fe)
	}
	writeFieldErrors(c, "validation failed", fields)
}

func writeFieldErrors(c *gin.Context, message string, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: ErrorDetail{
		Code:      validationCode,
		Message:   message,
		RequestID: middleware.GetRequestID(c),
		Fields:    fields,
	}})
}

// fieldName maps a validator field such as "IDs[3]" to "ids[3]" using the
// JSON tag of the struct field.
func fieldName(fe validator.FieldError, jsonTags map[string]string) string {
	field := fe.StructField()
	base, index, _ := strings.Cut(field, "[")
	if index != "" {
		index = "[" + index
	}
	if tag, ok := jsonTags[base]; ok {
		return tag + index
	}
	return strings.ToLower(base) + index
}

func ruleName(fe validator.FieldError) string {
	// uuid_rfc4122 is the case-insensitive uuid check; clients only see "uuid".
	if fe.Tag() == "uuid_rfc4122" {
		return "uuid"
	}
	if fe.Param() != "" {
		return fe.Tag() + "=" + fe.Param()
	}
	return fe.Tag()
}

// buildJSONTagMap returns a map from struct field name to its JSON tag name,
// falling back to the form tag for query-only fields.
// If obj is nil or not a struct (pointer), it returns nil.
func buildJSONTagMap(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if name := parseJSONTagName(f.Tag.Get("json")); name != "" {
			m[f.Name] = name
		} else if name := parseJSONTagName(f.Tag.Get("form")); name != "" {
			m[f.Name] = name
		}
	}
	return m
}

// parseJSONTagName extracts the field name from a JSON struct tag value.
func parseJSONTagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}
