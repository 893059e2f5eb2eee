package api

// APIError represents a structured error response.
type APIError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e APIError) Error() string {
	return e.Message
}

// Error types with proper categorization.
const (
	ErrTypeValidation         = "validation_error"
	ErrTypeDegenerateMask     = "degenerate_mask"
	ErrTypeDecode             = "decode_error"
	ErrTypeNotFound           = "challenge_not_found"
	ErrTypeExpired            = "challenge_expired"
	ErrTypeTooManyAttempts    = "too_many_attempts"
	ErrTypeEncoding           = "encoding_error"
	ErrTypeServiceUnavailable = "service_unavailable"
	ErrTypeInternal           = "internal_error"
)

// NewChallengeRequest is the body of POST /captcha/new.
type NewChallengeRequest struct {
	// Mode is "text", "shape", "depth", or "random".
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty,omitempty"`
	// Seed pins generation for reproducible challenges; normally empty.
	Seed string `json:"seed,omitempty"`
	// Word and Shape optionally fix the answer for their modes.
	Word  string `json:"word,omitempty"`
	Shape string `json:"shape,omitempty"`
	// DepthImage is base64 (optionally a data: URL) for depth mode.
	DepthImage    string  `json:"depth_image,omitempty"`
	ThresholdLow  float64 `json:"threshold_low,omitempty"`
	ThresholdHigh float64 `json:"threshold_high,omitempty"`
}

// NewChallengeResponse returns the issued challenge.
type NewChallengeResponse struct {
	ID          string `json:"id"`
	Mode        string `json:"mode"`
	VideoBase64 string `json:"video_base64"`
	Hint        string `json:"hint"`
	ExpiresAt   int64  `json:"expires_at"`
}

// VerifyRequest is the body of POST /captcha/verify.
type VerifyRequest struct {
	ID     string `json:"id"`
	Answer string `json:"answer"`
}

// VerifyResponse reports the verification outcome.
type VerifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HintResponse returns the challenge hint.
type HintResponse struct {
	Hint     string `json:"hint"`
	Attempts int    `json:"attempts"`
}

// ModesResponse lists the supported challenge modes and shapes.
type ModesResponse struct {
	Modes  []string `json:"modes"`
	Shapes []string `json:"shapes"`
}
