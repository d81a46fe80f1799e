package audit

import (
	"context"
	"fmt"
	"log/slog"

	"carelink/pkg/requestcontext"
)

// Emitter is the publishing side services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// LogAudit logs an audit line and forwards the event to the publisher when one
// is configured. attrs are slog-style key/value pairs; they are copied into
// Event.Attrs as strings. Publishing failures are logged, never returned: an
// audit sink outage must not fail the business operation.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher Emitter, event AuditEvent, attrs ...any) {
	requestID := requestcontext.RequestID(ctx)
	actor := requestcontext.ActorID(ctx)

	if logger != nil {
		args := append([]any{}, attrs...)
		if requestID != "" {
			args = append(args, "request_id", requestID)
		}
		if !actor.IsNil() {
			args = append(args, "actor_id", actor.String())
		}
		args = append(args, "event", string(event), "log_type", "audit")
		logger.InfoContext(ctx, string(event), args...)
	}

	if publisher == nil {
		return
	}
	e := Event{
		Category:  event.Category(),
		Timestamp: requestcontext.Now(ctx),
		ActorID:   actor,
		Action:    string(event),
		RequestID: requestID,
		Attrs:     toAttrs(attrs),
	}
	if err := publisher.Emit(ctx, e); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

func toAttrs(kv []any) map[string]string {
	if len(kv) < 2 {
		return nil
	}
	out := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		out[key] = fmt.Sprint(kv[i+1])
	}
	return out
}
