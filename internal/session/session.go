// ABOUTME: TransmissionSession drives the turn-limited conversation delivering a diff
// ABOUTME: Explicit state machine: one info turn, one turn per chunk, one analysis request
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prsight/prsight/internal/models"
)

// Phase identifies where a session is in its lifecycle.
type Phase string

const (
	PhaseInit               Phase = "INIT"
	PhaseSendingInfo        Phase = "SENDING_INFO"
	PhaseSendingChunks      Phase = "SENDING_CHUNKS"
	PhaseRequestingAnalysis Phase = "REQUESTING_ANALYSIS"
	PhaseDone               Phase = "DONE"
	PhaseFailed             Phase = "FAILED"
)

// Failure reasons surfaced by a session. All are terminal for the attempt;
// a retry restarts the whole session from scratch.
var (
	// ErrTurnBudgetExceeded means the chunk count plus the two fixed turns
	// does not fit in the turn budget. Raised before any network attempt.
	ErrTurnBudgetExceeded = errors.New("turn budget exceeded")
	// ErrTransportFailure means a round trip did not complete.
	ErrTransportFailure = errors.New("transport failure")
	// ErrMalformedAcknowledgement means a response did not satisfy the
	// acknowledgement contract (empty response).
	ErrMalformedAcknowledgement = errors.New("malformed acknowledgement")
)

// fixedTurns reserved on top of the chunk turns: the info turn and the
// final analysis request.
const fixedTurns = 2

// Transport performs one blocking round trip in an ongoing conversation.
// The remote endpoint is stateful across turns, so a Transport instance
// must not be shared between sessions.
type Transport interface {
	SendTurn(ctx context.Context, text string) (string, error)
}

// Session drives one analysis attempt. Not safe for concurrent use; run
// independent sessions for independent entities.
type Session struct {
	transport Transport
	maxTurns  int

	phase     Phase
	pending   []models.Chunk
	turnsUsed int
	result    string
	failure   error
}

// New creates a session over the given transport with a hard turn budget.
func New(transport Transport, maxTurns int) *Session {
	return &Session{
		transport: transport,
		maxTurns:  maxTurns,
		phase:     PhaseInit,
	}
}

// Run executes the full transmission protocol: the info turn, every diff
// chunk in order, then the analysis request. It returns the final analysis
// text, or the failure that terminated the session.
func (s *Session) Run(ctx context.Context, info string, chunks []models.Chunk, analysisRequest string) (string, error) {
	s.phase = PhaseInit
	s.pending = append([]models.Chunk(nil), chunks...)
	s.turnsUsed = 0
	s.result = ""
	s.failure = nil

	// Check the budget before touching the network. Exceeding it is a
	// permanent failure for this input size, not something to retry.
	needed := len(chunks) + fixedTurns
	if needed > s.maxTurns {
		return "", s.fail(fmt.Errorf("%w: %d chunks need %d turns, budget is %d",
			ErrTurnBudgetExceeded, len(chunks), needed, s.maxTurns))
	}

	s.phase = PhaseSendingInfo
	if err := s.sendAcknowledged(ctx, info); err != nil {
		return "", s.fail(err)
	}

	s.phase = PhaseSendingChunks
	for len(s.pending) > 0 {
		turn := formatChunkTurn(s.pending[0])
		if err := s.sendAcknowledged(ctx, turn); err != nil {
			return "", s.fail(err)
		}
		s.pending = s.pending[1:]
	}

	s.phase = PhaseRequestingAnalysis
	resp, err := s.sendTurn(ctx, analysisRequest)
	if err != nil {
		return "", s.fail(err)
	}
	if strings.TrimSpace(resp) == "" {
		return "", s.fail(fmt.Errorf("%w: empty analysis response", ErrMalformedAcknowledgement))
	}

	s.result = resp
	s.phase = PhaseDone
	return resp, nil
}

// Phase returns the current state-machine phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// TurnsUsed returns how many round trips the session has spent.
func (s *Session) TurnsUsed() int {
	return s.turnsUsed
}

// PendingChunks returns how many chunks still await transmission.
func (s *Session) PendingChunks() int {
	return len(s.pending)
}

// Result returns the accumulated analysis text, empty until PhaseDone.
func (s *Session) Result() string {
	return s.result
}

// Failure returns the error that moved the session to PhaseFailed, or nil.
func (s *Session) Failure() error {
	return s.failure
}

func (s *Session) sendTurn(ctx context.Context, text string) (string, error) {
	if s.turnsUsed >= s.maxTurns {
		return "", fmt.Errorf("%w: used %d of %d turns", ErrTurnBudgetExceeded, s.turnsUsed, s.maxTurns)
	}
	resp, err := s.transport.SendTurn(ctx, text)
	s.turnsUsed++
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}
	return resp, nil
}

// sendAcknowledged sends one turn and requires a non-empty response.
func (s *Session) sendAcknowledged(ctx context.Context, text string) error {
	resp, err := s.sendTurn(ctx, text)
	if err != nil {
		return err
	}
	if strings.TrimSpace(resp) == "" {
		return fmt.Errorf("%w: empty response to turn %d", ErrMalformedAcknowledgement, s.turnsUsed)
	}
	return nil
}

func (s *Session) fail(err error) error {
	s.failure = err
	s.phase = PhaseFailed
	return err
}

// formatChunkTurn wraps one diff chunk in a turn that tells the endpoint to
// hold its analysis until every part has arrived.
func formatChunkTurn(c models.Chunk) string {
	return fmt.Sprintf(
		"Diff part %d of %d. Acknowledge receipt briefly and wait for the remaining parts before analyzing.\n\n```diff\n%s\n```",
		c.Index+1, c.Total, c.Text)
}
