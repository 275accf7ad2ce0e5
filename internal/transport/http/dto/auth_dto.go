package dto

type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
	Birthdate string `json:"birthdate"`
	City      string `json:"city"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthMeResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
}

type AuthTokensResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresInSec int64          `json:"expires_in_sec"`
	Me           AuthMeResponse `json:"me"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
