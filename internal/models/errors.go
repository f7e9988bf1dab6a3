package models

// ErrorResponse is the JSON error envelope returned on every failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
