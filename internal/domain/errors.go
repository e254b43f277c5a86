package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrUnauthorized    = errors.New("unauthorized")
)

// InvalidTransitionError запрошенное действие недопустимо из текущего статуса платежа
// Current всегда содержит фактический статус на момент проверки
type InvalidTransitionError struct {
	PaymentID uuid.UUID
	Action    PaymentAction
	Current   PaymentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: action %q is not allowed for payment %s in status %q",
		e.Action, e.PaymentID, e.Current)
}

func IsInvalidTransition(err error) bool {
	var transitionErr *InvalidTransitionError
	return errors.As(err, &transitionErr)
}

// MalformedCommandError команда или callback не распарсились
type MalformedCommandError struct {
	Input  string
	Reason string
}

func (e *MalformedCommandError) Error() string {
	return fmt.Sprintf("malformed command %q: %s", e.Input, e.Reason)
}

func IsMalformedCommand(err error) bool {
	var malformedErr *MalformedCommandError
	return errors.As(err, &malformedErr)
}

// DispatchError ошибка доставки уведомления, на статус платежа не влияет
type DispatchError struct {
	Kind      NotificationKind
	PaymentID uuid.UUID
	Err       error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch failed for payment %s (kind %s): %v", e.PaymentID, e.Kind, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// ValidationError ошибка валидации входных данных платежа
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// BusinessError ошибка бизнес-логики, которая уже залогирована в UseCase
type BusinessError struct {
	Err error
}

func (e *BusinessError) Error() string {
	return e.Err.Error()
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func WrapBusinessError(err error) error {
	if err == nil {
		return nil
	}
	return &BusinessError{Err: err}
}

func IsBusinessError(err error) bool {
	var businessErr *BusinessError
	return errors.As(err, &businessErr)
}
