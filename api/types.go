package api

// EnrollResponse is returned after a successful enrollment.
type EnrollResponse struct {
	Username string `json:"username"`
	Language string `json:"language"`
}

// LoginResponse is returned after a successful voice login.
type LoginResponse struct {
	Username  string  `json:"username"`
	Language  string  `json:"language"`
	Distance  float64 `json:"distance"`
	Token     string  `json:"token"`
	ExpiresIn int64   `json:"expires_in"` // seconds
}

// SessionResponse describes the identity behind a session token.
type SessionResponse struct {
	Username  string `json:"username"`
	Language  string `json:"language"`
	ExpiresAt int64  `json:"expires_at"` // unix seconds
}

// LanguageResponse describes one supported language with its prompts.
type LanguageResponse struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	EnrollPrompts []string `json:"enroll_prompts"`
	LoginPrompt   string   `json:"login_prompt"`
}
