package utils

// APIResponse is the envelope for every JSON response. Error responses always
// carry a Message so clients can surface it without parsing Error details.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(message, detail string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Error:   detail,
	}
}
