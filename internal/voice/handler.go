package voice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jayphen/taskvoice/internal/auth"
	"github.com/Jayphen/taskvoice/internal/interpret"
	"github.com/Jayphen/taskvoice/internal/logging"
	"github.com/Jayphen/taskvoice/internal/session"
	"github.com/Jayphen/taskvoice/internal/tasksource"
)

// DefaultMaxListed is how many task names a query reads out.
const DefaultMaxListed = 5

// ErrBadRequest is returned for envelopes the handler cannot route.
var ErrBadRequest = errors.New("bad voice request")

// Options tune a Handler. Zero values select defaults.
type Options struct {
	// Now is the clock for relative dates. Defaults to time.Now.
	Now func() time.Time
	// Location is the user's time zone. Defaults to time.Local.
	Location *time.Location
	// Tokens verifies account-linking tokens. Nil accepts every request.
	Tokens *auth.Tokens
	// Parser interprets utterances. Defaults to interpret.DefaultParser().
	Parser    *interpret.Parser
	MaxListed int
}

// Handler answers voice requests against a task source.
type Handler struct {
	tasks    tasksource.TaskSource
	sessions *session.Manager
	opts     Options
}

// NewHandler builds a Handler.
func NewHandler(tasks tasksource.TaskSource, sessions *session.Manager, opts Options) *Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Parser == nil {
		opts.Parser = interpret.DefaultParser()
	}
	if opts.MaxListed <= 0 {
		opts.MaxListed = DefaultMaxListed
	}
	return &Handler{tasks: tasks, sessions: sessions, opts: opts}
}

// turn is the context of one request.
type turn struct {
	ctx    context.Context
	state  *session.State
	intent string
	slots  Slots
	now    time.Time
	log    *logging.Logger
}

// Handle answers one request. Task source failures become spoken apologies;
// only malformed envelopes and session store failures return an error.
func (h *Handler) Handle(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || req.Request.Type == "" {
		return nil, fmt.Errorf("%w: missing request type", ErrBadRequest)
	}

	log := logging.WithRequestID(req.Request.RequestID).
		WithSessionID(req.Session.SessionID).
		WithField("type", req.Request.Type)

	userID := req.Session.User.UserID
	if h.opts.Tokens != nil {
		linked, err := h.opts.Tokens.ParseAccessToken(req.Session.User.AccessToken)
		switch {
		case err == nil:
			userID = linked
		case req.Request.Type != SessionEndedRequest:
			log.WithError(err).Info("account not linked")
			return LinkAccount(), nil
		}
	}
	log = log.WithUserID(userID)

	st, err := h.sessions.Begin(ctx, userID, req.Session.SessionID)
	if err != nil {
		return nil, err
	}

	var resp *Response
	switch req.Request.Type {
	case LaunchRequest:
		resp = Ask("Welcome to your tasks. You can add a task, update one, or ask what's due.",
			"What would you like to do?")
	case SessionEndedRequest:
		log.WithField("reason", req.Request.Reason).Debug("session ended")
		return Empty(), h.sessions.End(ctx, st)
	case IntentRequest:
		slots, err := ParseSlots(req.Request.Intent.Slots, h.opts.Location)
		if err != nil {
			log.WithError(err).Warn("rejected slots")
			resp = Ask("Sorry, I didn't catch that. What would you like to do?", "")
			break
		}
		t := &turn{
			ctx:    ctx,
			state:  st,
			intent: req.Request.Intent.Name,
			slots:  slots,
			now:    h.opts.Now().In(h.opts.Location),
			log:    log.WithField("intent", req.Request.Intent.Name),
		}
		resp = h.dispatch(t)
	default:
		return nil, fmt.Errorf("%w: unknown request type %q", ErrBadRequest, req.Request.Type)
	}

	if resp.Response.ShouldEndSession {
		return resp, h.sessions.End(ctx, st)
	}
	return resp, h.sessions.Commit(ctx, st)
}

func (h *Handler) dispatch(t *turn) *Response {
	switch t.intent {
	case AddTaskIntent:
		return h.addTask(t)
	case UpdateTaskIntent, CompleteTaskIntent, DeleteTaskIntent:
		return h.changeTask(t)
	case QueryTasksIntent:
		return h.queryTasks(t)
	case ProvideTaskIntent:
		return h.provideTask(t)
	case HelpIntent:
		return Ask(`Try "add buy milk tomorrow", "mark the report as done", or "what's due this week".`,
			"What would you like to do?")
	case StopIntent, CancelIntent:
		return Tell("Goodbye.")
	default:
		t.log.Debug("fallback")
		return Ask("Sorry, I didn't get that. You can add, update, complete, delete or list tasks.", "")
	}
}
