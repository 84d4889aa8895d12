package rest

// ErrorResponse is the JSON error body returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
