// Package voice answers pilot queries through a text generation collaborator.
//
// A Relay never fails: without a configured collaborator it answers with a
// fixed offline message, and collaborator errors are turned into a reply that
// carries the error description.
package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yegors/aeroai/internal/ai"
	"github.com/yegors/aeroai/pkg/logger"
)

const (
	// AssistantName is the persona the pilot talks to
	AssistantName = "SkyAssist"

	// OfflineMessage is returned by every call when no collaborator is configured
	OfflineMessage = "Voice assistant is in offline mode (API key missing). SkyAssist recommends maintaining standard procedures."

	// ErrorReplyPrefix starts every reply produced from a collaborator failure
	ErrorReplyPrefix = AssistantName + " encountered an error: "

	// DefaultContext stands in for a missing or empty flight context
	DefaultContext = "Default flight parameters"
)

// Mode reports which variant a relay is
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// Outcome classifies how a reply was produced
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeError   Outcome = "error"
	OutcomeOffline Outcome = "offline"
)

// Query is a pilot's request
type Query struct {
	Text          string
	FlightContext map[string]any
}

// Reply is the text to be spoken back to the pilot
type Reply struct {
	Response string  `json:"response"`
	Outcome  Outcome `json:"-"`
}

// Relay answers pilot queries
type Relay interface {
	Reply(ctx context.Context, q Query) Reply
	Mode() Mode
}

// New selects the relay variant. A nil generator yields the offline relay.
func New(gen ai.TextGenerator, log *logger.Logger) Relay {
	if gen == nil {
		return offlineRelay{}
	}
	return &onlineRelay{gen: gen, logger: log.Named("voice")}
}

// NewOffline returns the relay used when no collaborator is configured
func NewOffline() Relay {
	return offlineRelay{}
}

type offlineRelay struct{}

func (offlineRelay) Reply(context.Context, Query) Reply {
	return Reply{Response: OfflineMessage, Outcome: OutcomeOffline}
}

func (offlineRelay) Mode() Mode { return ModeOffline }

type onlineRelay struct {
	gen    ai.TextGenerator
	logger *logger.Logger
}

func (r *onlineRelay) Mode() Mode { return ModeOnline }

func (r *onlineRelay) Reply(ctx context.Context, q Query) Reply {
	start := time.Now()
	text, err := r.gen.Generate(ctx, BuildPrompt(q))
	if err != nil {
		r.logger.Warn("Voice assistant collaborator failed",
			logger.Int("query_chars", len(q.Text)),
			logger.Duration("duration", time.Since(start)),
			logger.Error(err))
		return Reply{Response: ErrorReplyPrefix + err.Error(), Outcome: OutcomeError}
	}

	r.logger.Debug("Voice assistant replied",
		logger.Int("query_chars", len(q.Text)),
		logger.Int("reply_chars", len(text)),
		logger.Duration("duration", time.Since(start)))
	return Reply{Response: text, Outcome: OutcomeOK}
}

// BuildPrompt renders the persona instruction, the pilot's literal text and
// the flight context into a single prompt
func BuildPrompt(q Query) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are '%s', a professional and advanced AI flight assistant for pilots.\n", AssistantName)
	b.WriteString("You are part of the AeroAI system.\n")
	fmt.Fprintf(&b, "The pilot is asking: '%s'\n", q.Text)
	fmt.Fprintf(&b, "Context: %s\n", FormatContext(q.FlightContext))
	b.WriteString("\n")
	b.WriteString("Provide a concise, professional, and helpful response. Use aviation terminology where appropriate.\n")
	b.WriteString("Keep it short as it will be spoken back to the pilot.\n")
	return b.String()
}

// FormatContext renders a flight context as compact JSON with sorted keys.
// Missing or empty contexts render as DefaultContext.
func FormatContext(fc map[string]any) string {
	if len(fc) == 0 {
		return DefaultContext
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Sprintf("%v", fc)
	}
	return string(data)
}
