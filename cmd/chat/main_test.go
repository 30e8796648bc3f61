package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/farm-shop/internal/chat"
	"github.com/spec-kit/farm-shop/internal/chatstore"
)

func TestTerminalSession(t *testing.T) {
	color.NoColor = true
	store := chatstore.NewMemoryStore(0)
	session := &terminalSession{
		id:    "t1",
		store: store,
		opts:  chat.Options{NavigationDelay: -1},
	}

	var out bytes.Buffer
	err := session.run(context.Background(), strings.NewReader("about\n\nproducts\nexit\nhelp\n"), &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "bot> Hello! I'm the Fresh Valley assistant.")
	assert.Contains(t, text, "bot> Redirecting to about page...")
	assert.Contains(t, text, "[navigate to /about after 0s]")
	assert.NotContains(t, text, "I can help you with:")

	state, err := store.Load(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, chat.KindProductsConfirmation, state.Phase.Kind())
}

func TestTerminalSession_ReadsPasswordsWithoutEcho(t *testing.T) {
	color.NoColor = true
	store := chatstore.NewMemoryStore(0)
	var secretReads int
	session := &terminalSession{
		id:    "t2",
		store: store,
		opts:  chat.Options{NavigationDelay: -1},
		readSecret: func() (string, error) {
			secretReads++
			return "exit", nil
		},
	}

	var out bytes.Buffer
	err := session.run(context.Background(), strings.NewReader("login\nalice\nexit\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, 1, secretReads)
	assert.NotContains(t, out.String(), "exit")

	state, err := store.Load(context.Background(), "t2")
	require.NoError(t, err)
	assert.Equal(t, chat.KindLoginUsername, state.Phase.Kind())
	assert.Equal(t, 1, state.LoginAttempts)
}
