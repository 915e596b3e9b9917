package exchange

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lcampanelli/relayvox/internal/audio"
	"github.com/lcampanelli/relayvox/internal/history"
	"github.com/lcampanelli/relayvox/internal/observability"
	"github.com/lcampanelli/relayvox/internal/reply"
	"github.com/lcampanelli/relayvox/internal/upstream"
)

// State names one step of the exchange lifecycle. The engine walks
// Idle → Receiving → Dispatching → Parsing → Replying per submission, with
// Errored absorbing any unrecoverable fault before returning to Idle.
type State string

const (
	StateIdle        State = "idle"
	StateReceiving   State = "receiving"
	StateDispatching State = "dispatching"
	StateParsing     State = "parsing"
	StateReplying    State = "replying"
	StateErrored     State = "errored"
)

// Status classifies how an exchange concluded.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusError    Status = "error"
)

// Payload is one submitted audio clip. The bytes are opaque; ContentType may
// be empty, in which case it is sniffed from container magic.
type Payload struct {
	Data        []byte
	ContentType string
}

// Result is the single structured reply produced for one payload.
type Result struct {
	ID         string
	Transcript string
	ReplyText  string
	ReplyAudio []byte
	Status     Status
	Model      string
}

// ErrEmptyPayload rejects zero-length submissions before any upstream work.
var ErrEmptyPayload = errors.New("empty audio payload")

// InstructionPrompt is the fixed behavior description sent with every payload.
const InstructionPrompt = "Listen to this short voice message. Transcribe what was said, " +
	"or summarize it briefly if it is long. Then respond helpfully in one or two sentences, " +
	"with a conversational tone. Format your answer exactly as:\n" +
	"TRANSCRIPT: <the transcript or summary>\n" +
	"RESPONSE: <your reply>"

// FallbackReplyText is substituted when no usable upstream reply could be
// produced. Never exposes provider error detail.
const FallbackReplyText = "Sorry, I'm having trouble processing voice messages right now. Please try again in a moment."

const recordTimeout = 2 * time.Second

// Engine drives one audio-submission-to-reply cycle. It is transport-agnostic
// and request-scoped: both front ends share one Engine, and every Run call is
// independent.
type Engine struct {
	upstream upstream.Client
	store    history.Store
	metrics  *observability.Metrics

	// upstreamTimeout bounds the Dispatching state. Zero leaves the call
	// bounded only by the transport.
	upstreamTimeout time.Duration
}

func NewEngine(client upstream.Client, store history.Store, metrics *observability.Metrics, upstreamTimeout time.Duration) *Engine {
	return &Engine{
		upstream:        client,
		store:           store,
		metrics:         metrics,
		upstreamTimeout: upstreamTimeout,
	}
}

// Run processes one payload and always produces exactly one Result. Upstream
// and parse faults are absorbed into the Result; the only error return is
// payload validation, which callers surface to the client directly.
func (e *Engine) Run(ctx context.Context, sessionID, transport string, p Payload) (Result, error) {
	started := time.Now()

	// Receiving: buffer and validate.
	if len(p.Data) == 0 {
		return Result{}, ErrEmptyPayload
	}
	if p.ContentType == "" {
		p.ContentType = audio.DetectContentType(p.Data)
	}
	e.metrics.Stages.Observe(string(StateReceiving), time.Since(started))

	res := Result{ID: uuid.NewString(), Status: StatusOK}

	// Dispatching: one upstream attempt, no same-candidate retry.
	dispatchStart := time.Now()
	dctx := ctx
	if e.upstreamTimeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, e.upstreamTimeout)
		defer cancel()
	}
	out, err := e.upstream.Invoke(dctx, p.Data, p.ContentType, InstructionPrompt)
	e.metrics.Stages.Observe(string(StateDispatching), time.Since(dispatchStart))

	if err != nil {
		// Errored: substitute the fixed fallback and return to Idle. The
		// session, if any, survives the failed exchange.
		res.Status = StatusError
		res.Transcript = reply.PlaceholderTranscript
		res.ReplyText = FallbackReplyText
		e.metrics.UpstreamInvocations.WithLabelValues(modelLabel(out.Model), "error").Inc()
		e.finish(sessionID, transport, started, res)
		return res, nil
	}
	res.Model = out.Model
	e.metrics.UpstreamInvocations.WithLabelValues(modelLabel(out.Model), "ok").Inc()

	// Parsing: best-effort split of the raw output.
	parseStart := time.Now()
	parsed := reply.Parse(out.Text)
	res.Transcript = parsed.Transcript
	res.ReplyText = parsed.ReplyText
	if parsed.Degraded {
		res.Status = StatusDegraded
	}
	e.metrics.Stages.Observe(string(StateParsing), time.Since(parseStart))

	e.finish(sessionID, transport, started, res)
	return res, nil
}

// finish covers the Replying bookkeeping shared by all exit paths: metrics and
// the best-effort exchange log. Recording runs on a background context so a
// disconnected caller still leaves an audit trail.
func (e *Engine) finish(sessionID, transport string, started time.Time, res Result) {
	e.metrics.Exchanges.WithLabelValues(transport, string(res.Status)).Inc()
	e.metrics.ObserveExchangeLatency(time.Since(started))
	e.metrics.Stages.Observe(string(StateReplying), time.Since(started))

	if e.store == nil {
		return
	}
	rctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	_ = e.store.SaveExchange(rctx, history.ExchangeRecord{
		ID:         res.ID,
		SessionID:  sessionID,
		Transport:  transport,
		Transcript: res.Transcript,
		ReplyText:  res.ReplyText,
		Status:     string(res.Status),
		Model:      res.Model,
	})
}

func modelLabel(model string) string {
	if model == "" {
		return "unresolved"
	}
	return model
}
