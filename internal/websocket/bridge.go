package websocket

import (
	"context"
	"log/slog"

	"github.com/dukerupert/maidmanager/internal/controller"
	"github.com/dukerupert/maidmanager/internal/model"
	"github.com/dukerupert/maidmanager/internal/observe"
)

// Controllers are the state holders a bridge exposes.
type Controllers struct {
	Auth   *controller.Auth
	Roster *controller.Roster
	Detail *controller.Detail
}

// Bridge turns controller state into hub messages and client intents into
// controller calls.
type Bridge struct {
	c      Controllers
	hub    *Hub
	logger *slog.Logger
}

func NewBridge(c Controllers, hub *Hub, logger *slog.Logger) *Bridge {
	return &Bridge{c: c, hub: hub, logger: logger}
}

// Run forwards every state change to the hub until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	scope := controller.NewScope(ctx)

	forwardState(scope, b.c.Auth.State(), authMessage, b.hub.Broadcast)
	forwardEvents(scope, b.c.Auth.Results(), authResultMessage, b.hub.Broadcast)
	forwardState(scope, b.c.Roster.State(), rosterMessage, b.hub.Broadcast)
	forwardState(scope, b.c.Detail.Detail(), detailMessage, b.hub.Broadcast)
	forwardState(scope, b.c.Detail.Payroll(), payrollMessage, b.hub.Broadcast)
	forwardEvents(scope, b.c.Detail.OTP(), otpMessage, b.hub.Broadcast)
	forwardEvents(scope, b.c.Detail.ManualAttendance(), actionMessage("manual_attendance"), b.hub.Broadcast)
	forwardEvents(scope, b.c.Detail.Deletion(), actionMessage("delete_maid"), b.hub.Broadcast)
	forwardEvents(scope, b.c.Detail.Notices(), noticeMessage, b.hub.Broadcast)

	<-ctx.Done()
	return scope.Close()
}

// Snapshot returns the durable states as messages, for a client that has
// just connected. One-shot outcomes are not included.
func (b *Bridge) Snapshot() []Message {
	return []Message{
		authMessage(b.c.Auth.State().Value()),
		rosterMessage(b.c.Roster.State().Value()),
		detailMessage(b.c.Detail.Detail().Value()),
		payrollMessage(b.c.Detail.Payroll().Value()),
	}
}

// forwardState skips the replayed current value; Snapshot covers it.
func forwardState[T any](scope *controller.Scope, s *observe.State[T], toMessage func(T) Message, send func(Message)) {
	ch, cancel := s.Subscribe(observe.DefaultBuffer)
	<-ch
	scope.Go(func(ctx context.Context) error {
		defer cancel()
		return pump(ctx, ch, toMessage, send)
	})
}

func forwardEvents[T any](scope *controller.Scope, e *observe.Events[T], toMessage func(T) Message, send func(Message)) {
	ch, cancel := e.Subscribe(observe.DefaultBuffer)
	scope.Go(func(ctx context.Context) error {
		defer cancel()
		return pump(ctx, ch, toMessage, send)
	})
}

func pump[T any](ctx context.Context, ch <-chan T, toMessage func(T) Message, send func(Message)) error {
	for {
		select {
		case v := <-ch:
			send(toMessage(v))
		case <-ctx.Done():
			return nil
		}
	}
}

func authMessage(s controller.AuthState) Message {
	return NewMessage("auth", string(s), "", nil)
}

func authResultMessage(r controller.AuthResult) Message {
	return NewMessage("auth_result", string(r.Kind), "", withMessage(nil, r.Message))
}

func rosterMessage(l controller.Load[[]model.Maid]) Message {
	extra := map[string]any{}
	if l.IsSuccess() {
		extra["maids"] = l.Data
	}
	return NewMessage("roster", string(l.Phase), "", withMessage(extra, l.Message))
}

func detailMessage(l controller.Load[model.Maid]) Message {
	extra := map[string]any{}
	if l.IsSuccess() {
		extra["maid"] = l.Data
	}
	return NewMessage("maid", string(l.Phase), l.Key, withMessage(extra, l.Message))
}

func payrollMessage(l controller.Load[model.PayrollResponse]) Message {
	extra := map[string]any{}
	if l.IsSuccess() {
		extra["payroll"] = l.Data
	}
	return NewMessage("payroll", string(l.Phase), l.Key, withMessage(extra, l.Message))
}

func otpMessage(s controller.OTPState) Message {
	return NewMessage("otp", string(s.Kind), "", withMessage(nil, s.Message))
}

func actionMessage(entity string) func(controller.Action) Message {
	return func(a controller.Action) Message {
		return NewMessage(entity, string(a.Kind), "", withMessage(nil, a.Message))
	}
}

func noticeMessage(n controller.Notice) Message {
	return NewMessage("task_notice", string(controller.PhaseError), n.MaidID, map[string]any{
		"op":      n.Op,
		"message": n.Message,
	})
}

func withMessage(extra map[string]any, message string) map[string]any {
	if message == "" {
		if len(extra) == 0 {
			return nil
		}
		return extra
	}
	if extra == nil {
		extra = map[string]any{}
	}
	extra["message"] = message
	return extra
}
