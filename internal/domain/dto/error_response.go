package dto

import "time"

// ErrorResponse is the JSON envelope for every failed API call.
type ErrorResponse struct {
	Message      string    `json:"message" example:"no trading data"`
	ErrorDetails string    `json:"error,omitempty" example:"no trading data in the requested span"`
	Kind         string    `json:"kind,omitempty" example:"no_trading_data"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewErrorResponse builds an envelope stamped with the current time.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{Message: message, Timestamp: time.Now().UTC()}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}

func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}
