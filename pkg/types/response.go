package types

// ErrorEnvelope is the body written for every failed request.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Success *bool  `json:"success,omitempty"`
	Details any    `json:"details,omitempty"`
}
