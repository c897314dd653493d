package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value, err := strconv.ParseUint(c.Params(key), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

func queryUintPtr(c *fiber.Ctx, key string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	parsed := uint(value)
	return &parsed, nil
}

func queryStringPtr(c *fiber.Ctx, key string) *string {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	return &raw
}

func queryBoolPtr(c *fiber.Ctx, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
