// Package validation содержит настроенный валидатор входных данных.
package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// New возвращает валидатор с зарегистрированными правилами приложения.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// FirstFieldError возвращает имя поля и правило первой ошибки валидации.
func FirstFieldError(err error) (field, tag string, ok bool) {
	verrs, isValidation := err.(validator.ValidationErrors)
	if !isValidation || len(verrs) == 0 {
		return "", "", false
	}
	return strings.ToLower(verrs[0].Field()), verrs[0].Tag(), true
}
