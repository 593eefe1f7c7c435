package constants

// Standard response field keys
const (
	ResponseFieldMessage = "message"
	ResponseFieldDetails = "details"
)

// BuildErrorResponse formats an error payload for the HTTP layer.
func BuildErrorResponse(message string, details any) map[string]any {
	response := map[string]any{
		ResponseFieldMessage: message,
	}

	if details != nil {
		response[ResponseFieldDetails] = details
	}

	return response
}

// BuildSuccessResponse formats a plain success message payload.
func BuildSuccessResponse(message string) map[string]any {
	return map[string]any{
		ResponseFieldMessage: message,
	}
}
