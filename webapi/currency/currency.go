package currency

import (
	"github.com/amirasaad/fxconv/pkg/currency"
	"github.com/amirasaad/fxconv/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the read-only currency endpoints.
func Routes(app *fiber.App, registry *currency.Registry) {
	currencyGroup := app.Group("/api/currencies")
	currencyGroup.Get("/", ListCurrencies(registry))
	currencyGroup.Get("/:code", GetCurrency(registry))
}

// ListCurrencies returns a Fiber handler listing the supported currencies in selector order.
func ListCurrencies(registry *currency.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list := registry.List()
		out := make([]CurrencyResponse, 0, len(list))
		for _, cur := range list {
			out = append(out, ToResponse(cur))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currencies fetched successfully", out)
	}
}

// GetCurrency returns a Fiber handler for a single supported currency.
func GetCurrency(registry *currency.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code, err := registry.Validate(c.Params("code"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid currency code", err)
		}
		cur, _ := registry.Get(code)
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currency fetched successfully", ToResponse(cur))
	}
}
