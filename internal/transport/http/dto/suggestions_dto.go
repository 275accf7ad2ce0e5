package dto

type ProfileResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
	Age       int    `json:"age"`
	City      string `json:"city"`
}

type SuggestionsResponse struct {
	Items []ProfileResponse `json:"items"`
}

type PreferenceResponse struct {
	PreferredGender string `json:"preferred_gender"`
	MinAge          int    `json:"min_age"`
	MaxAge          int    `json:"max_age"`
}

type UpdatePreferenceRequest struct {
	PreferredGender string `json:"preferred_gender"`
	MinAge          int    `json:"min_age"`
	MaxAge          int    `json:"max_age"`
}
