package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/abhayporwals/taskyn/internal/platform/apierr"
)

type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type ErrorEnvelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
	Stack   string   `json:"stack,omitempty"`
}

var (
	stackMu     sync.RWMutex
	exposeStack bool
)

// ExposeStack toggles stack traces in error bodies. Off in production.
func ExposeStack(on bool) {
	stackMu.Lock()
	exposeStack = on
	stackMu.Unlock()
}

func stackEnabled() bool {
	stackMu.RLock()
	defer stackMu.RUnlock()
	return exposeStack
}

var tagNames sync.Once

// UseJSONFieldNames makes binding validation errors report json tag names.
func UseJSONFieldNames() {
	tagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
}

func OK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Error renders err and aborts the chain. Binding failures become 400s with
// one entry per offending field.
func Error(c *gin.Context, err error) {
	ae := classify(err)
	_ = c.Error(err)

	body := ErrorEnvelope{Success: false, Message: ae.Message, Errors: ae.Errors}
	if body.Errors == nil {
		body.Errors = []string{}
	}
	if stackEnabled() {
		body.Stack = ae.Stack()
	}
	c.AbortWithStatusJSON(ae.Status, body)
}

func classify(err error) *apierr.Error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		details := make([]string, 0, len(ve))
		for _, fe := range ve {
			details = append(details, fieldMessage(fe))
		}
		return apierr.BadRequest("Validation failed", details...)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return apierr.BadRequest("Invalid request body")
	case errors.As(err, &typeErr):
		return apierr.BadRequest("Invalid request body", fmt.Sprintf("%s must be %s", typeErr.Field, typeErr.Type))
	}
	return apierr.From(err)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters long", fe.Field(), fe.Param())
	case "numeric":
		return fe.Field() + " must be numeric"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "url":
		return fe.Field() + " must be a valid URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
