package session

import (
	"calculator-frontend/internal/calculator"
	"calculator-frontend/internal/display"
)

// State is the JSON rendering of a session.
type State struct {
	ID       string                    `json:"id"`
	ClientID string                    `json:"client_id,omitempty"`
	Display  display.View              `json:"display"`
	History  []calculator.HistoryEntry `json:"history"`
}

type CreateRequest struct {
	ClientID string `json:"client_id"`
}

type KeyRequest struct {
	Key string `json:"key"`
}

type HistoryResponse struct {
	History []calculator.HistoryEntry `json:"history"`
}

type OperationsResponse struct {
	Operations map[string]string `json:"operations"`
}

func stateOf(s *Session) State {
	h := s.Controller.History()
	if h == nil {
		h = []calculator.HistoryEntry{}
	}
	return State{
		ID:       s.ID,
		ClientID: s.ClientID,
		Display:  s.Controller.View(),
		History:  h,
	}
}
