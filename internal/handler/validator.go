package handler

import (
    "database/sql/driver"
    "errors"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
    "gopkg.in/guregu/null.v4"
)

// FieldErrors maps a JSON field name to the rule it failed.
type FieldErrors map[string]string

// ValidationError is returned by RequestValidator when a request body
// breaks a field rule.
type ValidationError struct {
    Fields FieldErrors
}

func (e *ValidationError) Error() string {
    names := make([]string, 0, len(e.Fields))
    for name := range e.Fields {
        names = append(names, name)
    }
    return "validation failed: " + strings.Join(names, ", ")
}

// RequestValidator adapts go-playground/validator to echo.Validator.
// Reported field names are the JSON (or query) names.
type RequestValidator struct {
    v *validator.Validate
}

// NewRequestValidator builds a validator that understands guregu null types.
func NewRequestValidator() *RequestValidator {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        for _, tag := range []string{"json", "query", "param"} {
            name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
            if name != "" && name != "-" {
                return name
            }
        }
        return f.Name
    })
    // Nullable fields validate as their value; omitempty skips a null.
    v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
        if valuer, ok := field.Interface().(driver.Valuer); ok {
            if val, err := valuer.Value(); err == nil {
                return val
            }
        }
        return nil
    }, null.Int{}, null.String{})
    return &RequestValidator{v: v}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i interface{}) error {
    err := rv.v.Struct(i)
    if err == nil {
        return nil
    }
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) {
        return err
    }
    fields := make(FieldErrors, len(verrs))
    for _, fe := range verrs {
        rule := fe.Tag()
        if fe.Param() != "" {
            rule += "=" + fe.Param()
        }
        fields[fe.Field()] = rule
    }
    return &ValidationError{Fields: fields}
}
