package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/rl1809/flash-item/internal/auth"
	"github.com/rl1809/flash-item/internal/config"
)

func main() {
	secret := flag.String("secret", config.LookupEnvString("JWT_SECRET", ""), "HMAC secret shared with the server.")
	subject := flag.String("subject", "operator", "Token subject.")
	role := flag.String("role", auth.RoleOperator, "Role: operator, service or viewer.")
	ttl := flag.Duration("ttl", auth.TokenExpiry, "Token lifetime.")
	flag.Parse()

	if *secret == "" {
		log.Fatal("JWT secret is required")
	}
	switch *role {
	case auth.RoleOperator, auth.RoleService, auth.RoleViewer:
	default:
		log.Fatalf("unknown role %q", *role)
	}

	token, err := auth.GenerateToken(*secret, *subject, *role, *ttl)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	fmt.Println(token)
}
