package core

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// Package-level validator for incoming request structs
var (
	validate *validator.Validate
	once     sync.Once
)

func InitValidator() {
	once.Do(func() {
		validate = validator.New()
	})
}
