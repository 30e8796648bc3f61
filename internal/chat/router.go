package chat

import (
	"context"
	"strings"
)

type command struct {
	name     string
	keywords []string
	run      func(c *Controller, ctx context.Context, t *turn)
}

// commands are consulted in order and the first keyword hit wins.
var commands = []command{
	{name: "login", keywords: []string{"login"}, run: func(c *Controller, _ context.Context, t *turn) { c.startLogin(t) }},
	{name: "register", keywords: []string{"register", "sign up"}, run: func(c *Controller, _ context.Context, t *turn) { c.startRegister(t) }},
	{name: "forgot password", keywords: []string{"forgot password", "reset password"}, run: func(c *Controller, _ context.Context, t *turn) { c.startForgotPassword(t) }},
	{name: "logout", keywords: []string{"logout", "log out"}, run: (*Controller).logout},
	{name: "my details", keywords: []string{"my details"}, run: func(c *Controller, _ context.Context, t *turn) { c.showDetails(t) }},
	{name: "my orders", keywords: []string{"my orders", "orders", "order"}, run: func(c *Controller, _ context.Context, t *turn) {
		c.navigateAuthenticated(t, "/orders", msgRedirectOrders, msgLoginForOrders)
	}},
	{name: "products", keywords: []string{"products", "product"}, run: func(c *Controller, _ context.Context, t *turn) { c.askProducts(t) }},
	{name: "cart", keywords: []string{"cart"}, run: func(c *Controller, _ context.Context, t *turn) {
		c.navigateAuthenticated(t, "/shopping#cart", msgRedirectCart, msgLoginForCart)
	}},
	{name: "home", keywords: []string{"home"}, run: func(c *Controller, _ context.Context, t *turn) {
		t.say(msgRedirectHome)
		c.navigate(t, "/")
	}},
	{name: "about", keywords: []string{"about"}, run: func(c *Controller, _ context.Context, t *turn) {
		t.say(msgRedirectAbout)
		c.navigate(t, "/about")
	}},
	{name: "shopping", keywords: []string{"shopping", "shop"}, run: func(c *Controller, _ context.Context, t *turn) {
		c.navigateAuthenticated(t, "/shopping", msgRedirectShopping, msgLoginForShopping)
	}},
}

func matchCommand(normalized string) (command, bool) {
	for _, cmd := range commands {
		for _, kw := range cmd.keywords {
			if strings.Contains(normalized, kw) {
				return cmd, true
			}
		}
	}
	return command{}, false
}

// route handles a free command while no flow is active.
func (c *Controller) route(ctx context.Context, t *turn, normalized string) {
	cmd, ok := matchCommand(normalized)
	if !ok {
		t.say(msgHelp)
		return
	}
	cmd.run(c, ctx, t)
}

func (c *Controller) navigateAuthenticated(t *turn, path, redirect, refusal string) {
	if !c.state.IsAuthenticated() {
		t.say(refusal)
		return
	}
	t.say(redirect)
	c.navigate(t, path)
}

func (c *Controller) showDetails(t *turn) {
	u := c.state.User
	if u == nil {
		t.say(msgLoginForDetails)
		return
	}
	t.sayf(msgDetails, u.CustomerID, u.Username, u.Email, u.Phone, u.Address)
}

func (c *Controller) askProducts(t *turn) {
	c.state.enter(ProductsConfirmation{})
	t.say(msgProductsConfirm)
}

func (c *Controller) onProductsConfirmation(t *turn, answer string) {
	switch answer {
	case "yes", "y", "sure", "ok", "okay":
		c.state.enter(Idle{})
		t.say(msgRedirectProducts)
		c.navigate(t, "/products")
	case "no", "n", "nope":
		c.state.enter(Idle{})
		t.say(msgProductsDeclined)
	default:
		t.say(msgProductsYesNo)
	}
}

func (c *Controller) logout(ctx context.Context, t *turn) {
	if !c.state.IsAuthenticated() {
		t.say(msgNotLoggedIn)
		return
	}
	_, err := callBackend(ctx, c, "logout", func(ctx context.Context, a AccountService) (struct{}, error) {
		return struct{}{}, a.Logout(ctx)
	})
	if err != nil {
		msg := failureMessage(err, msgLogoutFallback)
		t.sayf(msgLogoutFailed, msg)
		return
	}
	c.deauthenticate(ctx)
	t.say(msgLoggedOut)
	c.navigate(t, "/")
}
