// cmd/gentoken/main.go issues a signed access token for local testing.
// Usage: go run ./cmd/gentoken -user marie -role manager
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Neo52000/ma-papeterie-sub003/internal/config"
	"github.com/Neo52000/ma-papeterie-sub003/internal/middleware"
)

func main() {
	user := flag.String("user", "admin", "username stamped into created_by / applied_by")
	role := flag.String("role", "admin", "viewer | manager | admin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	claims := middleware.JWTClaims{
		UserID:   uuid.NewString(),
		Username: *user,
		Role:     *role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(cfg.JWTExpirationHours) * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatalf("sign: %v", err)
	}
	fmt.Println(token)
}
