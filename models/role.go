package models

import (
	"regexp"

	"github.com/go-playground/validator"
)

type Role string

const (
	ADMIN  Role = "ADMIN"
	MEMBER Role = "MEMBER"
	OWNER  Role = "OWNER"
)

func (l *Role) Scan(value interface{}) error {
	*l = Role(value.(string))
	return nil
}

func (l Role) Value() (string, error) {
	return string(l), nil
}

func ValidateRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()

	matched, _ := regexp.MatchString("^ADMIN|MEMBER|OWNER$", string(value))
	return matched
}

func ValidateRoleRaw(value string) bool {

	matched, _ := regexp.MatchString("^ADMIN|MEMBER|OWNER$", value)
	return matched
}
