package chat

// PhaseKind is the stable identifier of a conversation phase.
type PhaseKind string

const (
	KindIdle                    PhaseKind = "idle"
	KindLoginUsername           PhaseKind = "login_username"
	KindLoginPassword           PhaseKind = "login_password"
	KindRegisterUsername        PhaseKind = "register_username"
	KindRegisterPassword        PhaseKind = "register_password"
	KindRegisterConfirm         PhaseKind = "register_confirm"
	KindRegisterEmail           PhaseKind = "register_email"
	KindRegisterPhone           PhaseKind = "register_phone"
	KindRegisterAddress         PhaseKind = "register_address"
	KindForgotPasswordPhone     PhaseKind = "forgot_password_phone"
	KindAwaitingOTP             PhaseKind = "awaiting_otp"
	KindAwaitingNewPassword     PhaseKind = "awaiting_new_password"
	KindAwaitingPasswordConfirm PhaseKind = "awaiting_password_confirm"
	KindProductsConfirmation    PhaseKind = "products_confirmation"
)

// Phase is the current step of the conversation. Only the variants declared
// in this package implement it, and each carries only the data its step needs.
type Phase interface {
	Kind() PhaseKind
	sealed()
}

// Idle waits for a free command.
type Idle struct{}

// LoginUsername waits for the username of a login attempt.
type LoginUsername struct{}

// LoginPassword waits for the password belonging to Username.
type LoginPassword struct {
	Username string `json:"username"`
}

// RegisterUsername is the first registration step.
type RegisterUsername struct{}

// RegisterPassword waits for the new account password.
type RegisterPassword struct {
	Draft Registration `json:"draft"`
}

// RegisterConfirm waits for the password to be typed again.
type RegisterConfirm struct {
	Draft Registration `json:"draft"`
}

// RegisterEmail waits for the account email.
type RegisterEmail struct {
	Draft Registration `json:"draft"`
}

// RegisterPhone waits for the account phone number.
type RegisterPhone struct {
	Draft Registration `json:"draft"`
}

// RegisterAddress waits for the delivery address, the last registration step.
type RegisterAddress struct {
	Draft Registration `json:"draft"`
}

// ForgotPasswordPhone waits for the phone number of the account to reset.
type ForgotPasswordPhone struct{}

// AwaitingOTP waits for the 6 digit code sent to Phone.
type AwaitingOTP struct {
	Phone string `json:"phone"`
}

// AwaitingNewPassword waits for the replacement password.
type AwaitingNewPassword struct {
	Phone      string `json:"phone"`
	ResetToken string `json:"reset_token"`
}

// AwaitingPasswordConfirm waits for the replacement password to be repeated.
type AwaitingPasswordConfirm struct {
	Phone       string `json:"phone"`
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password"`
}

// ProductsConfirmation waits for a yes/no before navigating to the catalog.
type ProductsConfirmation struct{}

func (Idle) Kind() PhaseKind                    { return KindIdle }
func (LoginUsername) Kind() PhaseKind           { return KindLoginUsername }
func (LoginPassword) Kind() PhaseKind           { return KindLoginPassword }
func (RegisterUsername) Kind() PhaseKind        { return KindRegisterUsername }
func (RegisterPassword) Kind() PhaseKind        { return KindRegisterPassword }
func (RegisterConfirm) Kind() PhaseKind         { return KindRegisterConfirm }
func (RegisterEmail) Kind() PhaseKind           { return KindRegisterEmail }
func (RegisterPhone) Kind() PhaseKind           { return KindRegisterPhone }
func (RegisterAddress) Kind() PhaseKind         { return KindRegisterAddress }
func (ForgotPasswordPhone) Kind() PhaseKind     { return KindForgotPasswordPhone }
func (AwaitingOTP) Kind() PhaseKind             { return KindAwaitingOTP }
func (AwaitingNewPassword) Kind() PhaseKind     { return KindAwaitingNewPassword }
func (AwaitingPasswordConfirm) Kind() PhaseKind { return KindAwaitingPasswordConfirm }
func (ProductsConfirmation) Kind() PhaseKind    { return KindProductsConfirmation }

func (Idle) sealed()                    {}
func (LoginUsername) sealed()           {}
func (LoginPassword) sealed()           {}
func (RegisterUsername) sealed()        {}
func (RegisterPassword) sealed()        {}
func (RegisterConfirm) sealed()         {}
func (RegisterEmail) sealed()           {}
func (RegisterPhone) sealed()           {}
func (RegisterAddress) sealed()         {}
func (ForgotPasswordPhone) sealed()     {}
func (AwaitingOTP) sealed()             {}
func (AwaitingNewPassword) sealed()     {}
func (AwaitingPasswordConfirm) sealed() {}
func (ProductsConfirmation) sealed()    {}

// Awaiting reports whether the phase claims the next utterance for itself.
func Awaiting(p Phase) bool {
	switch p.(type) {
	case nil, Idle:
		return false
	}
	return true
}

// secretInput reports whether utterances in the phase are credentials that
// must be taken literally and never echoed in clear.
func secretInput(p Phase) bool {
	switch p.(type) {
	case LoginPassword, RegisterPassword, RegisterConfirm, AwaitingNewPassword, AwaitingPasswordConfirm:
		return true
	}
	return false
}
