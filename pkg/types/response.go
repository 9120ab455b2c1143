package types

// SuccessEnvelope wraps every successful JSON body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public part of a failed request. Details carries the
// field -> message map for validation failures.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	Details   any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
