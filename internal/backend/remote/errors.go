package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError means no response was received: dial failure, timeout or
// cancellation.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx reply. Message holds the backend's "error" field
// when the body carried one.
type StatusError struct {
	Method  string
	URL     string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Code, msg)
}

// ClientError reports whether the backend rejected the request itself
// (4xx) rather than failing to process it.
func (e *StatusError) ClientError() bool {
	return e.Code >= 400 && e.Code < 500
}

// DecodeError is a 2xx reply whose body is not the expected JSON.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Describe returns a short user-facing message for a backend failure.
func Describe(err error) string {
	var (
		statusErr    *StatusError
		decodeErr    *DecodeError
		transportErr *TransportError
	)
	switch {
	case errors.As(err, &statusErr):
		if statusErr.Message != "" {
			return fmt.Sprintf("Сервер отклонил запрос (%d): %s", statusErr.Code, statusErr.Message)
		}
		return fmt.Sprintf("Сервер вернул ошибку %d", statusErr.Code)
	case errors.As(err, &decodeErr):
		return "Сервер вернул некорректный ответ"
	case errors.As(err, &transportErr):
		return "Сервер недоступен, проверьте соединение"
	default:
		return "Не удалось выполнить запрос"
	}
}
