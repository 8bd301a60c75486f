package middleware

import (
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/config"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/dto"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/session"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

func rejectToken(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized: invalid or expired token",
	})
}

// JWTProtected admits requests carrying a valid access token whose subject
// is a user id. Handlers read that id with session.GetUserID.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		SuccessHandler: func(c *fiber.Ctx) error {
			if _, err := session.GetUserID(c); err != nil {
				return rejectToken(c)
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return rejectToken(c)
		},
	})
}
