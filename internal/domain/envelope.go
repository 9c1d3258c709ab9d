package domain

// Envelope is the response shape shared by every JSON endpoint.
// Code mirrors the HTTP status of the response.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}
