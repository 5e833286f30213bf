package model

import "fmt"

// CatchUpRequest is the JSON body of POST /api/catchup.
type CatchUpRequest struct {
	Industry   string `json:"industry"`
	TimePeriod string `json:"time_period"`
}

// CatchUpResponse is the JSON body of a successful catch-up. Industry and
// Period carry display labels; Summary is markdown.
type CatchUpResponse struct {
	Industry string `json:"industry"`
	Period   string `json:"period"`
	Summary  string `json:"summary"`
	Cached   bool   `json:"cached"`
}

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// APIError is a non-2xx response as seen by a client. Message is the
// server's "error" field and may be empty.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return e.Message
}
