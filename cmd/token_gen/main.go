package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/technosupport/ts-alert-relay/internal/tokens"
)

func main() {
	client := flag.String("client", "", "Client name (e.g. edge-gw-01)")
	site := flag.String("site", "", "Site ID the client belongs to")
	role := flag.String("role", string(tokens.RoleIngest), "Token role: ingest or viewer")
	ttl := flag.Duration("ttl", 365*24*time.Hour, "Token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	key := os.Getenv("JWT_SIGNING_KEY")
	if key == "" {
		log.Fatal("JWT_SIGNING_KEY must be set")
	}
	if *client == "" {
		log.Fatal("-client is required")
	}

	r := tokens.Role(*role)
	if r != tokens.RoleIngest && r != tokens.RoleViewer {
		log.Fatalf("unknown role %q", *role)
	}

	mgr := tokens.NewManager(key)
	token, err := mgr.GenerateToken(*client, *site, r, *ttl)
	if err != nil {
		log.Fatalf("token generation failed: %v", err)
	}
	fmt.Println(token)
}
