package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/amirasaad/fxconv/pkg/converter"
	"github.com/amirasaad/fxconv/pkg/session"
	"github.com/amirasaad/fxconv/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the conversion session endpoints.
func Routes(app *fiber.App, store *session.Store, logger *slog.Logger) {
	g := app.Group("/api/sessions")
	g.Post("/", CreateSession(store))
	g.Get("/:id", GetSession(store))
	g.Delete("/:id", DeleteSession(store))
	g.Put("/:id/amount", SetAmount(store))
	g.Put("/:id/source", SetSource(store))
	g.Put("/:id/target", SetTarget(store))
	g.Post("/:id/swap", Swap(store))
	g.Post("/:id/refresh", Refresh(store, logger))
}

// CreateSession returns a Fiber handler that opens a session and loads its first rate table.
func CreateSession(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Create(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create session", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Session created", ToResponse(sess.ID, sess.Controller.View()))
	}
}

// GetSession returns a Fiber handler for the current form snapshot.
func GetSession(store *session.Store) fiber.Handler {
	return withSession(store, func(c *fiber.Ctx, sess *session.Session) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Session fetched", ToResponse(sess.ID, sess.Controller.View()))
	})
}

// DeleteSession returns a Fiber handler that closes a session.
func DeleteSession(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.Delete(c.Params("id")); err != nil {
			return common.ProblemDetailsJSON(c, "Session not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Session deleted", nil)
	}
}

// SetAmount returns a Fiber handler that edits the amount field.
func SetAmount(store *session.Store) fiber.Handler {
	return withSession(store, func(c *fiber.Ctx, sess *session.Session) error {
		input, err := common.BindAndValidate[AmountRequest](c)
		if input == nil {
			return err // error response already written
		}
		v, err := sess.Controller.SetAmount(c.UserContext(), input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Amount updated", ToResponse(sess.ID, v))
	})
}

// SetSource returns a Fiber handler that changes the source currency and refetches rates.
func SetSource(store *session.Store) fiber.Handler {
	return selectCurrency(store, "Source currency updated", func(ctx context.Context, ctl *converter.Controller, code string) (converter.View, error) {
		return ctl.SetSourceCurrency(ctx, code)
	})
}

// SetTarget returns a Fiber handler that changes the target currency.
func SetTarget(store *session.Store) fiber.Handler {
	return selectCurrency(store, "Target currency updated", func(ctx context.Context, ctl *converter.Controller, code string) (converter.View, error) {
		return ctl.SetTargetCurrency(ctx, code)
	})
}

// Swap returns a Fiber handler that exchanges source and target.
func Swap(store *session.Store) fiber.Handler {
	return withSession(store, func(c *fiber.Ctx, sess *session.Session) error {
		v, err := sess.Controller.Swap(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Cannot swap currencies", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currencies swapped", ToResponse(sess.ID, v))
	})
}

// Refresh returns a Fiber handler that refetches rates for the current source.
// Fetch failures are reported in the view's error field, not as an HTTP error.
func Refresh(store *session.Store, logger *slog.Logger) fiber.Handler {
	return withSession(store, func(c *fiber.Ctx, sess *session.Session) error {
		if err := sess.Controller.RefreshRates(c.UserContext()); err != nil && !errors.Is(err, converter.ErrSuperseded) {
			logger.Debug("Refresh failed", "session_id", sess.ID, "error", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Rates refreshed", ToResponse(sess.ID, sess.Controller.View()))
	})
}

type selectFunc func(ctx context.Context, ctl *converter.Controller, code string) (converter.View, error)

func selectCurrency(store *session.Store, message string, fn selectFunc) fiber.Handler {
	return withSession(store, func(c *fiber.Ctx, sess *session.Session) error {
		input, err := common.BindAndValidate[CurrencyRequest](c)
		if input == nil {
			return err // error response already written
		}
		v, err := fn(c.UserContext(), sess.Controller, input.Currency)
		if err != nil {
			title := "Invalid currency"
			if errors.Is(err, converter.ErrBusy) {
				title = "Exchange rates are loading"
			}
			return common.ProblemDetailsJSON(c, title, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, message, ToResponse(sess.ID, v))
	})
}

func withSession(store *session.Store, next func(*fiber.Ctx, *session.Session) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Session not found", err)
		}
		return next(c, sess)
	}
}
