package chat

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/qabot/internal/model/chat"
	"github.com/zhouzirui/qabot/internal/service/ai"
)

// TurnResult describes one completed submission.
type TurnResult struct {
	SessionID string       `json:"sessionId"`
	User      chat.Message `json:"user"`
	Reply     chat.Message `json:"reply"`
	// Failure is set when the reply is error text rather than model output.
	Failure *ai.DownstreamCallFailure `json:"-"`
	// Discarded is set when the transcript was cleared while the call was in flight.
	Discarded bool `json:"discarded,omitempty"`
}

// Failed reports whether the downstream call failed.
func (r TurnResult) Failed() bool {
	return r.Failure != nil
}

// Submit runs one conversation turn. The user message is stored before the
// completion call is issued; the reply, or the failure as "Error: ..." text,
// is stored after. Downstream failures never surface as a returned error.
// onDelta, when not nil, receives streamed reply fragments.
func (s *Service) Submit(ctx context.Context, sessionID, text string, onDelta func(string)) (TurnResult, error) {
	if isBlank(text) {
		return TurnResult{}, ErrEmptyMessage
	}

	st, err := s.lookup(sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	st.turnMu.Lock()
	defer st.turnMu.Unlock()

	user := chat.UserMessage(text)

	st.mu.Lock()
	request := st.transcript.BuildRequest(s.systemPrompt(st.session.AssistantID), text)
	st.transcript.Append(user)
	st.session.LastActive = s.now().UTC()
	generation := st.generation
	st.mu.Unlock()

	content, failure := s.complete(ctx, sessionID, ai.RequestFromConfig(s.aiCfg, request), onDelta)
	reply := chat.AssistantMessage(content)

	st.mu.Lock()
	discarded := st.generation != generation
	if !discarded {
		st.transcript.Append(reply)
	}
	st.session.LastActive = s.now().UTC()
	st.mu.Unlock()

	if discarded {
		log.Info().Str("session", sessionID).Msg("transcript cleared during call, reply dropped")
	}

	return TurnResult{
		SessionID: sessionID,
		User:      user,
		Reply:     reply,
		Failure:   failure,
		Discarded: discarded,
	}, nil
}

func (s *Service) complete(ctx context.Context, sessionID string, req ai.Request, onDelta func(string)) (string, *ai.DownstreamCallFailure) {
	if s.aiCfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.aiCfg.Timeout)
		defer cancel()
	}

	var (
		reply string
		err   error
	)
	if onDelta != nil {
		reply, err = s.completer.Stream(ctx, req, onDelta)
	} else {
		reply, err = s.completer.Complete(ctx, req)
	}

	if err != nil {
		failure := ai.AsFailure(s.completer.Name(), err)
		log.Warn().
			Err(err).
			Str("session", sessionID).
			Str("provider", failure.Provider).
			Bool("timeout", failure.Timeout()).
			Msg("completion call failed")
		return failure.DisplayText(), failure
	}

	log.Info().
		Str("session", sessionID).
		Str("provider", s.completer.Name()).
		Int("messages", len(req.Messages)).
		Int("len", len(reply)).
		Msg("generated response")
	return reply, nil
}
