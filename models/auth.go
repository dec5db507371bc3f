package models

type EmailLogin struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type PhoneLogin struct {
	Phone    string `json:"phone" binding:"required,e164"`
	Password string `json:"password" binding:"required"`
}

type EmailSignup struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	UserTimezone string `json:"userTimezone"`
}

type PhoneSignup struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required,e164"`
	Password     string `json:"password" binding:"required,min=6"`
	UserTimezone string `json:"userTimezone"`
}

// Session is what the hosted backend hands back after a successful sign-in.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	UserID       string `json:"userId"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
}
