// File: cmd/admin-token/main.go
//
// Mints a short-lived bearer token for the admin API, using the same
// secret the server reads from its config. Intended for operators:
//
//	admin-token -config config.yaml -ttl 15m
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"omnimap-agent/internal/config"
	httpapi "omnimap-agent/internal/infra/http"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	ttl := flag.Duration("ttl", 30*time.Minute, "token lifetime")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.HTTP.AdminJWTKey == "" {
		fmt.Fprintln(os.Stderr, "http.admin_jwt_key is not set; the admin API is disabled")
		os.Exit(1)
	}

	token, err := httpapi.NewAdminAuth(cfg.HTTP.AdminJWTKey, *ttl).Mint()
	if err != nil {
		log.Fatalf("mint: %v", err)
	}
	fmt.Println(token)
}
