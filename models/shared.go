package models

// ErrorEnvelope is the backend's error wrapper: {"message": <string>}.
type ErrorEnvelope struct {
	Message string `json:"message"`
}
