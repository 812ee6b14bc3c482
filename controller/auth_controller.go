package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthController struct {
	JWTSecret         string
	AdminPasswordHash string
}

func NewAuthController(jwtSecret, adminPasswordHash string) *AuthController {
	return &AuthController{
		JWTSecret:         jwtSecret,
		AdminPasswordHash: adminPasswordHash,
	}
}

// Login exchanges the admin password for a bearer token.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}

	if ac.AdminPasswordHash == "" {
		return c.Status(503).JSON(fiber.Map{"error": "admin login not configured"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(ac.AdminPasswordHash), []byte(body.Password)); err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "wrong password"})
	}

	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(ac.JWTSecret))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "could not sign token"})
	}

	return c.JSON(fiber.Map{"access_token": signed})
}
