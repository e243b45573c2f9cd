package httputil

import (
	"encoding/json"
	"net/http"
)

// Result is a handler's response. A string Body is written as text/plain;
// anything else is encoded as JSON. A nil Body writes no body.
type Result struct {
	Status int
	Body   any
}

// Text creates a plain text result
func Text(status int, message string) *Result {
	return &Result{Status: status, Body: message}
}

// JSON creates a JSON result
func JSON(status int, body any) *Result {
	return &Result{Status: status, Body: body}
}

// OK creates a 200 JSON result
func OK(body any) *Result {
	return JSON(http.StatusOK, body)
}

// NoContent creates a 204 result
func NoContent() *Result {
	return &Result{Status: http.StatusNoContent}
}

// InternalError creates a 500 result carrying err's message
func InternalError(err error) *Result {
	return Text(http.StatusInternalServerError, err.Error())
}

// WriteResult writes res to w
func WriteResult(w http.ResponseWriter, res *Result) error {
	switch body := res.Body.(type) {
	case nil:
		w.WriteHeader(res.Status)
		return nil
	case string:
		return WriteText(w, res.Status, body)
	default:
		return WriteJSON(w, res.Status, body)
	}
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteText writes a plain text response with the given status code
func WriteText(w http.ResponseWriter, status int, message string) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write([]byte(message))
	return err
}
