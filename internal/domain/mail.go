package domain

const (
	MailTypeWelcome       = "welcome"
	MailTypeResetPassword = "reset_password"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type WelcomeMailData struct {
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
}

type ResetPasswordMailData struct {
	FirstName  string `json:"firstName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}
