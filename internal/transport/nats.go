// Package transport exposes the assistant over NATS request/reply: speech
// frontends publish recognized utterances and receive the dispatch outcome.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/config"
	"github.com/addy-assistant/addy/internal/dispatch"
	"github.com/addy-assistant/addy/internal/intent"
	"github.com/addy-assistant/addy/internal/memory"
	"github.com/addy-assistant/addy/internal/nlp"
)

// UtteranceRequest is one recognized spoken utterance.
type UtteranceRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// UtteranceResponse reports how the utterance was handled.
type UtteranceResponse struct {
	SessionID string `json:"session_id"`
	Intent    string `json:"intent"`
	Engine    string `json:"engine"`
	Outcome   string `json:"outcome"`
	Exit      bool   `json:"exit,omitempty"`
}

// NATSTransport subscribes to the utterance subject and runs each request
// through the parser and dispatcher.
type NATSTransport struct {
	conn       *nats.Conn
	cfg        *config.Config
	parser     *nlp.Parser
	dispatcher *dispatch.Dispatcher
	mem        *memory.Manager // nil when conversation memory is disabled
	log        *zap.SugaredLogger
	sub        *nats.Subscription
	onExit     func()
}

// Connect dials the NATS server with the service's reconnect policy. The
// connection is shared between the transport and the speech sink.
func Connect(cfg *config.Config, log *zap.SugaredLogger) (*nats.Conn, error) {
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name(cfg.ServiceName),
		nats.Timeout(cfg.NatsTimeout),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	log.Infow("connected to NATS", "url", cfg.NatsURL)
	return conn, nil
}

func NewNATSTransport(conn *nats.Conn, cfg *config.Config, parser *nlp.Parser, dispatcher *dispatch.Dispatcher, mem *memory.Manager, log *zap.SugaredLogger) *NATSTransport {
	return &NATSTransport{
		conn:       conn,
		cfg:        cfg,
		parser:     parser,
		dispatcher: dispatcher,
		mem:        mem,
		log:        log,
	}
}

// OnExit registers the callback fired when a dispatch outcome requests
// shutdown.
func (nt *NATSTransport) OnExit(fn func()) { nt.onExit = fn }

func (nt *NATSTransport) Start() error {
	sub, err := nt.conn.Subscribe(nt.cfg.UtteranceSubject, nt.handleUtterance)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", nt.cfg.UtteranceSubject, err)
	}
	nt.sub = sub
	nt.log.Infow("listening for utterances", "subject", nt.cfg.UtteranceSubject)
	return nil
}

func (nt *NATSTransport) handleUtterance(msg *nats.Msg) {
	var request UtteranceRequest
	if err := json.Unmarshal(msg.Data, &request); err != nil {
		nt.log.Warnw("invalid utterance payload", "error", err)
		nt.respond(msg, UtteranceResponse{
			Intent:  intent.Unknown,
			Outcome: "error: invalid_request",
		})
		return
	}
	if request.SessionID == "" {
		request.SessionID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(context.Background(), nt.cfg.NatsTimeout)
	defer cancel()
	ctx = memory.WithSession(ctx, request.SessionID)

	nt.recordUserTurn(ctx, request)

	rec := nt.parser.Parse(ctx, request.Text)
	res := nt.dispatcher.Execute(ctx, rec)

	nt.recordAssistantTurn(ctx, request.SessionID, res)

	nt.respond(msg, UtteranceResponse{
		SessionID: request.SessionID,
		Intent:    rec.Intent,
		Engine:    string(rec.Engine),
		Outcome:   res.String(),
		Exit:      res.Kind == intent.KindExit,
	})

	if res.Kind == intent.KindExit && nt.onExit != nil {
		nt.onExit()
	}
}

func (nt *NATSTransport) recordUserTurn(ctx context.Context, request UtteranceRequest) {
	if nt.mem == nil || request.Text == "" {
		return
	}
	if err := nt.mem.RecordUserTurn(ctx, request.SessionID, request.Text); err != nil {
		nt.log.Warnw("record user turn failed", "session", request.SessionID, "error", err)
	}
}

func (nt *NATSTransport) recordAssistantTurn(ctx context.Context, sessionID string, res intent.Result) {
	if nt.mem == nil {
		return
	}
	if err := nt.mem.RecordAssistantTurn(ctx, sessionID, res.String()); err != nil {
		nt.log.Warnw("record assistant turn failed", "session", sessionID, "error", err)
	}
}

func (nt *NATSTransport) respond(msg *nats.Msg, response UtteranceResponse) {
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(response)
	if err != nil {
		nt.log.Errorw("marshal response failed", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		nt.log.Warnw("send response failed", "session", response.SessionID, "error", err)
	}
}

func (nt *NATSTransport) Close() error {
	if nt.sub != nil {
		_ = nt.sub.Unsubscribe()
	}
	if nt.conn != nil {
		nt.conn.Close()
		nt.log.Info("NATS connection closed")
	}
	return nil
}
