package chat

import (
	"encoding/json"
	"fmt"
)

// SessionUser is the customer a conversation is logged in as.
type SessionUser struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

// Registration accumulates account fields during the registration flow.
type Registration struct {
	Username        string `json:"username,omitempty"`
	Password        string `json:"password,omitempty"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Address         string `json:"address,omitempty"`
}

// State is the conversation state of a single chat session. It is owned by
// one Controller at a time.
type State struct {
	Phase         Phase
	LoginAttempts int
	User          *SessionUser
}

// NewState returns an idle, anonymous state.
func NewState() *State {
	return &State{Phase: Idle{}}
}

// IsAuthenticated reports whether a customer is logged in.
func (s State) IsAuthenticated() bool {
	return s.User != nil
}

// enter switches to p, dropping whatever the previous phase carried.
func (s *State) enter(p Phase) {
	if p == nil {
		p = Idle{}
	}
	s.Phase = p
}

type stateEnvelope struct {
	Phase         PhaseKind       `json:"phase"`
	PhaseData     json.RawMessage `json:"phase_data,omitempty"`
	LoginAttempts int             `json:"login_attempts"`
	User          *SessionUser    `json:"user,omitempty"`
}

// MarshalJSON encodes the phase as a kind tag plus its payload.
func (s State) MarshalJSON() ([]byte, error) {
	phase := s.Phase
	if phase == nil {
		phase = Idle{}
	}
	env := stateEnvelope{
		Phase:         phase.Kind(),
		LoginAttempts: s.LoginAttempts,
		User:          s.User,
	}
	switch phase.(type) {
	case Idle, LoginUsername, RegisterUsername, ForgotPasswordPhone, ProductsConfirmation:
	default:
		data, err := json.Marshal(phase)
		if err != nil {
			return nil, fmt.Errorf("encode phase %s: %w", phase.Kind(), err)
		}
		env.PhaseData = data
	}
	return json.Marshal(env)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (s *State) UnmarshalJSON(data []byte) error {
	var env stateEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	phase, err := decodePhase(env.Phase, env.PhaseData)
	if err != nil {
		return err
	}
	s.Phase = phase
	s.LoginAttempts = env.LoginAttempts
	s.User = env.User
	return nil
}

func decodePhase(kind PhaseKind, data json.RawMessage) (Phase, error) {
	switch kind {
	case "", KindIdle:
		return Idle{}, nil
	case KindLoginUsername:
		return LoginUsername{}, nil
	case KindRegisterUsername:
		return RegisterUsername{}, nil
	case KindForgotPasswordPhone:
		return ForgotPasswordPhone{}, nil
	case KindProductsConfirmation:
		return ProductsConfirmation{}, nil
	case KindLoginPassword:
		return decodeInto[LoginPassword](data)
	case KindRegisterPassword:
		return decodeInto[RegisterPassword](data)
	case KindRegisterConfirm:
		return decodeInto[RegisterConfirm](data)
	case KindRegisterEmail:
		return decodeInto[RegisterEmail](data)
	case KindRegisterPhone:
		return decodeInto[RegisterPhone](data)
	case KindRegisterAddress:
		return decodeInto[RegisterAddress](data)
	case KindAwaitingOTP:
		return decodeInto[AwaitingOTP](data)
	case KindAwaitingNewPassword:
		return decodeInto[AwaitingNewPassword](data)
	case KindAwaitingPasswordConfirm:
		return decodeInto[AwaitingPasswordConfirm](data)
	default:
		return nil, fmt.Errorf("unknown phase %q", kind)
	}
}

func decodeInto[T Phase](data json.RawMessage) (Phase, error) {
	var p T
	if len(data) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode phase %s: %w", p.Kind(), err)
	}
	return p, nil
}
