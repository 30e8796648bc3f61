package chat

import "context"

// Login flow.

func (c *Controller) startLogin(t *turn) {
	if c.state.IsAuthenticated() {
		t.sayf(msgAlreadyLoggedIn, c.state.User.Username)
		return
	}
	c.state.LoginAttempts = 0
	c.state.enter(LoginUsername{})
	t.say(msgAskUsername)
}

func (c *Controller) onLoginUsername(t *turn, username string) {
	if username == "" {
		t.say(msgAskUsername)
		return
	}
	c.state.enter(LoginPassword{Username: username})
	t.say(msgAskPassword)
}

func (c *Controller) onLoginPassword(ctx context.Context, t *turn, p LoginPassword, password string) {
	user, err := c.login(ctx, p.Username, password)
	if err != nil {
		msg := failureMessage(err, msgLoginFallback)
		c.state.LoginAttempts++
		if c.state.LoginAttempts >= c.maxLoginAttempts {
			c.state.enter(Idle{})
			t.say(msg)
			t.say(msgLockedOut)
			return
		}
		c.state.enter(LoginUsername{})
		t.sayf(msgLoginFailedRetry, msg, c.maxLoginAttempts-c.state.LoginAttempts)
		return
	}

	c.authenticate(ctx, *user)
	t.sayf(msgLoginSuccess, user.Username)
	c.navigate(t, "/shopping")
}

func (c *Controller) login(ctx context.Context, username, password string) (*SessionUser, error) {
	user, err := callBackend(ctx, c, "login", func(ctx context.Context, a AccountService) (*SessionUser, error) {
		return a.Login(ctx, username, password)
	})
	if err == nil && user == nil {
		err = Reject("")
	}
	return user, err
}

// Registration flow.

func (c *Controller) startRegister(t *turn) {
	if c.state.IsAuthenticated() {
		t.sayf(msgAlreadyRegistered, c.state.User.Username)
		return
	}
	c.state.enter(RegisterUsername{})
	t.say(msgRegisterIntro)
	t.say(msgRegisterUsername)
}

func (c *Controller) onRegisterUsername(t *turn, username string) {
	if verr := validateUsername(username); verr != nil {
		t.say(verr.Message)
		return
	}
	c.state.enter(RegisterPassword{Draft: Registration{Username: username}})
	t.say(msgRegisterPassword)
}

func (c *Controller) onRegisterPassword(t *turn, p RegisterPassword, password string) {
	if verr := validatePassword(password); verr != nil {
		t.say(verr.Message)
		return
	}
	draft := p.Draft
	draft.Password = password
	c.state.enter(RegisterConfirm{Draft: draft})
	t.say(msgRegisterConfirm)
}

func (c *Controller) onRegisterConfirm(t *turn, p RegisterConfirm, confirm string) {
	draft := p.Draft
	if confirm != draft.Password {
		draft.Password = ""
		c.state.enter(RegisterPassword{Draft: draft})
		t.say(msgRegisterMismatch)
		return
	}
	draft.ConfirmPassword = confirm
	c.state.enter(RegisterEmail{Draft: draft})
	t.say(msgRegisterEmail)
}

func (c *Controller) onRegisterEmail(t *turn, p RegisterEmail, email string) {
	if verr := validateEmail(email); verr != nil {
		t.say(verr.Message)
		return
	}
	draft := p.Draft
	draft.Email = email
	c.state.enter(RegisterPhone{Draft: draft})
	t.say(msgRegisterPhone)
}

func (c *Controller) onRegisterPhone(t *turn, p RegisterPhone, phone string) {
	if verr := validatePhone(phone); verr != nil {
		t.say(verr.Message)
		return
	}
	draft := p.Draft
	draft.Phone = phone
	c.state.enter(RegisterAddress{Draft: draft})
	t.say(msgRegisterAddress)
}

func (c *Controller) onRegisterAddress(ctx context.Context, t *turn, p RegisterAddress, address string) {
	if verr := validateAddress(address); verr != nil {
		t.say(verr.Message)
		return
	}
	draft := p.Draft
	draft.Address = address
	t.say(msgRegistering)

	customerID, err := callBackend(ctx, c, "register", func(ctx context.Context, a AccountService) (string, error) {
		return a.Register(ctx, draft)
	})
	if err != nil {
		msg := failureMessage(err, msgRegisterFallback)
		c.state.enter(Idle{})
		t.sayf(msgRegisterFailed, msg)
		return
	}
	t.sayf(msgRegistered, customerID)

	user, err := c.login(ctx, draft.Username, draft.Password)
	if err != nil {
		c.state.enter(Idle{})
		t.say(msgAutoLoginFailed)
		return
	}
	c.authenticate(ctx, *user)
	t.sayf(msgAutoLoginSuccess, user.Username)
	c.navigate(t, "/shopping")
}

// Password reset flow.

func (c *Controller) startForgotPassword(t *turn) {
	c.state.LoginAttempts = 0
	c.state.enter(ForgotPasswordPhone{})
	t.say(msgAskPhone)
}

func (c *Controller) onForgotPasswordPhone(ctx context.Context, t *turn, phone string) {
	if !isDigits(phone) {
		t.say(msgPhoneDigitsOnly)
		return
	}
	_, err := callBackend(ctx, c, "request_password_reset", func(ctx context.Context, a AccountService) (struct{}, error) {
		return struct{}{}, a.RequestPasswordReset(ctx, phone)
	})
	if err != nil {
		msg := failureMessage(err, msgResetFallback)
		c.state.enter(Idle{})
		t.sayf(msgResetFailed, msg)
		return
	}
	c.state.enter(AwaitingOTP{Phone: phone})
	t.say(msgOTPSent)
}

func (c *Controller) onOTP(ctx context.Context, t *turn, p AwaitingOTP, code string) {
	if !isOTP(code) {
		t.say(msgOTPFormat)
		return
	}
	token, err := callBackend(ctx, c, "verify_reset_code", func(ctx context.Context, a AccountService) (string, error) {
		return a.VerifyResetCode(ctx, p.Phone, code)
	})
	if err == nil && token == "" {
		err = Reject("")
	}
	if err != nil {
		msg := failureMessage(err, msgOTPFallback)
		t.sayf(msgOTPInvalid, msg)
		return
	}
	c.state.enter(AwaitingNewPassword{Phone: p.Phone, ResetToken: token})
	t.say(msgOTPVerified)
}

func (c *Controller) onNewPassword(t *turn, p AwaitingNewPassword, password string) {
	if validatePassword(password) != nil {
		t.say(msgNewPasswordLength)
		return
	}
	c.state.enter(AwaitingPasswordConfirm{Phone: p.Phone, ResetToken: p.ResetToken, NewPassword: password})
	t.say(msgConfirmNew)
}

func (c *Controller) onPasswordConfirm(ctx context.Context, t *turn, p AwaitingPasswordConfirm, confirm string) {
	if confirm != p.NewPassword {
		c.state.enter(AwaitingNewPassword{Phone: p.Phone, ResetToken: p.ResetToken})
		t.say(msgNewMismatch)
		return
	}
	_, err := callBackend(ctx, c, "reset_password", func(ctx context.Context, a AccountService) (struct{}, error) {
		return struct{}{}, a.ResetPassword(ctx, p.ResetToken, p.NewPassword, confirm)
	})
	if err != nil {
		msg := failureMessage(err, msgResetPassFallback)
		c.state.enter(ForgotPasswordPhone{})
		t.sayf(msgResetRestart, msg)
		t.say(msgAskPhone)
		return
	}
	c.state.LoginAttempts = 0
	c.state.enter(Idle{})
	t.say(msgPasswordReset)
}
