package keygate

import (
	"github.com/gofiber/fiber/v2"
)

const traceLocalsKey = "keygate_trace"

// TraceRecorder collects ordered diagnostic step labels for one request. It
// is wired through fiber locals, lives for the request only, and has no
// bearing on authorization decisions.
type TraceRecorder struct {
	RequestID string
	steps     []string
}

// Add appends a step label.
func (t *TraceRecorder) Add(step string) {
	t.steps = append(t.steps, step)
}

// Steps returns the recorded labels in order.
func (t *TraceRecorder) Steps() []string {
	return t.steps
}

// Trace records a step against the request's recorder, if one is installed.
func Trace(c *fiber.Ctx, step string) {
	if rec, ok := c.Locals(traceLocalsKey).(*TraceRecorder); ok {
		rec.Add(step)
	}
}

// NewTracer installs a TraceRecorder per request and dumps the collected
// steps at debug level once the handler chain finishes.
func NewTracer(logger Logger, requestIDKey string) fiber.Handler {
	if logger == nil {
		logger = defLogger{}
	}
	return func(c *fiber.Ctx) error {
		rec := &TraceRecorder{}
		if rid, ok := c.Locals(requestIDKey).(string); ok {
			rec.RequestID = rid
		}
		c.Locals(traceLocalsKey, rec)

		err := c.Next()

		if steps := rec.Steps(); len(steps) > 0 {
			logger.Debug("request trace",
				"request_id", rec.RequestID,
				"steps", steps,
			)
		}
		return err
	}
}
