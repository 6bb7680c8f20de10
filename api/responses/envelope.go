package responses

// SuccessEnvelope wraps every REST payload as {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is the REST failure body {"error": {code, message, details}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// FunctionError is the flat failure body of the function endpoints.
type FunctionError struct {
	Error string `json:"error"`
}
