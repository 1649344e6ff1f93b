package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound            = errors.New("kayıt bulunamadı")
	ErrSessionClosed       = errors.New("veritabanı oturumu kapalı")
	ErrConstraintViolation = errors.New("veritabanı kısıtı ihlal edildi")
	ErrInvalidInput        = errors.New("geçersiz girdi")
	ErrNoSession           = errors.New("istek kapsamında veritabanı oturumu yok")
	ErrStorageBusy         = errors.New("veritabanı meşgul")
)

// NotFoundError names the missing resource and the key that was looked up.
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field-level problem found at the boundary.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "doğrulama hatası: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// ConnectionError is returned when no storage connection could be obtained.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("veritabanı bağlantısı kurulamadı: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ConstraintError wraps a driver error raised by a unique, foreign key, not-null or check constraint.
type ConstraintError struct {
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("kısıt ihlali (%s): %v", e.Constraint, e.Err)
	}
	return fmt.Sprintf("kısıt ihlali: %v", e.Err)
}

func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraintViolation
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// BusyError wraps a driver error raised when a lock could not be obtained in
// time or a transaction lost a deadlock. Retrying the request may succeed.
type BusyError struct {
	Err error
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("veritabanı meşgul: %v", e.Err)
}

func (e *BusyError) Is(target error) bool {
	return target == ErrStorageBusy
}

func (e *BusyError) Unwrap() error {
	return e.Err
}
