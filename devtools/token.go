package main

import (
	"flag"
	"log"

	"github.com/openbuilders/campaign-api/internal/auth"
	"github.com/openbuilders/campaign-api/internal/env"

	"github.com/joho/godotenv"
)

// Prints a bearer token for local requests against the API.
func main() {
	_ = godotenv.Load()

	accountID := flag.Int64("account", 1, "account id to issue the token for")
	ttl := flag.Duration("ttl", 0, "token lifetime, 0 never expires")
	flag.Parse()

	secret := env.GetString("JWT_SECRET", "dev-secret")

	token, err := auth.IssueToken(secret, *accountID, *ttl)
	if err != nil {
		log.Fatalln("issue token err: ", err.Error())
	}

	log.Println("Authorization: Bearer " + token)
}
