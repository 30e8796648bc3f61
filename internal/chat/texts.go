package chat

const (
	msgWelcome     = "Hello! I'm the Fresh Valley assistant. I can help you login, register, reset your password or find your way around the shop."
	msgWelcomeBack = "Welcome back, %s! How can I help you today?"
	msgHelp        = "I can help you with: login, register, forgot password, products, about, shopping, cart, my orders, my details, logout, home. You can also navigate to different pages by mentioning them."
	msgCancelled   = "Okay, I've cancelled that. What would you like to do next?"

	msgAskUsername      = "Please enter your username:"
	msgAskPassword      = "Please enter your password:"
	msgLoginFailedRetry = "%s You have %d attempt(s) left. Please enter your username:"
	msgLockedOut        = "Too many failed login attempts. Please type \"login\" to start again or \"forgot password\" to reset your password."
	msgLoginSuccess     = "Login successful! Welcome, %s. Redirecting you to the shopping page..."
	msgLoginFallback    = "Invalid username or password."
	msgAlreadyLoggedIn  = "You're already logged in as %s."

	msgRegisterIntro     = "Let me help you register. Please provide the following information:"
	msgRegisterUsername  = "Username:"
	msgRegisterPassword  = "Password (at least 6 characters):"
	msgRegisterConfirm   = "Please confirm your password:"
	msgRegisterMismatch  = "Passwords do not match. Please enter your password again:"
	msgRegisterEmail     = "Email:"
	msgRegisterPhone     = "Phone number:"
	msgRegisterAddress   = "Delivery address:"
	msgRegistering       = "Creating your account..."
	msgRegistered        = "Registration successful! Your Customer ID is: %s"
	msgRegisterFailed    = "%s Type \"register\" to try again."
	msgRegisterFallback  = "Registration failed."
	msgAutoLoginSuccess  = "You're now logged in as %s. Redirecting you to the shopping page..."
	msgAutoLoginFailed   = "I couldn't log you in automatically. Please type \"login\" and sign in with your new username and password."
	msgAlreadyRegistered = "You're already logged in as %s. Logout first to register a new account."

	msgAskPhone          = "Please enter your phone number to reset your password:"
	msgPhoneDigitsOnly   = "Phone number must contain digits only. Please enter your phone number:"
	msgOTPSent           = "We've sent a 6 digit code to your phone. Please enter it here:"
	msgResetFailed       = "%s Type \"forgot password\" to try again."
	msgResetFallback     = "We couldn't start the password reset."
	msgOTPFormat         = "Please enter the 6 digit code we sent to your phone."
	msgOTPInvalid        = "%s Please try again or type \"forgot password\" to restart."
	msgOTPFallback       = "Invalid or expired code."
	msgOTPVerified       = "Code verified! Please enter your new password (at least 6 characters):"
	msgNewPasswordLength = "Password must be at least 6 characters long. Please enter your new password:"
	msgConfirmNew        = "Please confirm your new password:"
	msgNewMismatch       = "Passwords do not match. Please enter your new password again:"
	msgPasswordReset     = "Your password has been reset successfully. You can now type \"login\" to sign in."
	msgResetRestart      = "%s Let's start over."
	msgResetPassFallback = "We couldn't reset your password."

	msgLoggedOut        = "You have been logged out successfully."
	msgNotLoggedIn      = "You're not logged in."
	msgLogoutFailed     = "%s You're still logged in."
	msgLogoutFallback   = "We couldn't log you out."
	msgDetails          = "Your Details:\nCustomer ID: %s\nUsername: %s\nEmail: %s\nPhone: %s\nAddress: %s"
	msgLoginForDetails  = "Please login first to see your details."
	msgLoginForOrders   = "Please login first to view your orders."
	msgLoginForCart     = "Please login first to view your cart."
	msgLoginForShopping = "Please login first to access the shopping page."

	msgProductsConfirm  = "Would you like me to take you to our products page? (yes/no)"
	msgProductsYesNo    = "Please answer yes or no. Would you like to see our products?"
	msgProductsDeclined = "No problem. Let me know if there's anything else I can help with."

	msgRedirectHome     = "Redirecting to home page..."
	msgRedirectProducts = "Redirecting to products page..."
	msgRedirectAbout    = "Redirecting to about page..."
	msgRedirectShopping = "Redirecting to shopping page..."
	msgRedirectOrders   = "Redirecting to orders page..."
	msgRedirectCart     = "Opening your cart..."

	msgTransportFailure = "Sorry, I couldn't reach our servers. Please try again later."
)
