package models

// Session is the token pair handed to a client.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse is a Session plus the identity it was issued for.
type LoginResponse struct {
	ID           string `json:"id"`
	UserName     string `json:"userName"`
	Email        string `json:"email"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// NewLoginResponse combines user identity fields with a freshly issued session.
func NewLoginResponse(user *User, s *Session) LoginResponse {
	return LoginResponse{
		ID:           user.ID,
		UserName:     user.UserName,
		Email:        user.Email,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
}
