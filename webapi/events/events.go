package events

import (
	"encoding/json"
	"strconv"

	"github.com/amirasaad/fxconv/pkg/eventbus"
	"github.com/amirasaad/fxconv/webapi/common"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// privateFields are payload keys that act as credentials and never leave the server.
var privateFields = []string{"session_id"}

// Routes registers the event feed endpoint.
func Routes(app *fiber.App, bus eventbus.Bus) {
	app.Get("/api/events", RecentEvents(bus))
}

// RecentEvents returns a Fiber handler listing the newest converter events.
// The optional limit query parameter is capped at 500. Session IDs are
// stripped from every payload.
func RecentEvents(bus eventbus.Bus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := defaultLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				return common.ProblemDetailsJSON(c, "Invalid limit", err, "limit must be a positive integer", fiber.StatusBadRequest)
			}
			limit = min(n, maxLimit)
		}
		envs, err := bus.Recent(c.UserContext(), limit)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to read events", err, fiber.StatusServiceUnavailable)
		}
		public := make([]eventbus.Envelope, 0, len(envs))
		for _, env := range envs {
			public = append(public, redact(env))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Events fetched successfully", public)
	}
}

// redact drops privateFields from the envelope payload. A payload that is not
// a JSON object is replaced by null.
func redact(env eventbus.Envelope) eventbus.Envelope {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(env.Payload, &fields); err != nil || fields == nil {
		env.Payload = json.RawMessage("null")
		return env
	}
	for _, key := range privateFields {
		delete(fields, key)
	}
	data, err := json.Marshal(fields)
	if err != nil {
		env.Payload = json.RawMessage("null")
		return env
	}
	env.Payload = data
	return env
}
