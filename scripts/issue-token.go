package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/omnidash/omnidash/internal/auth"
)

type output struct {
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
}

// issue-token signs an access token locally for manual API testing.
// The token is only useful against a server running with the same secret,
// and only resolves once an account with that email exists.
func main() {
	var (
		secret = flag.String("secret", os.Getenv("TOKEN_SECRET"), "Token signing secret")
		email  = flag.String("email", "alice@example.com", "Email to embed as the token subject")
		format = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "TOKEN_SECRET is required")
		os.Exit(1)
	}
	if *email == "" {
		fmt.Fprintln(os.Stderr, "email is required")
		os.Exit(1)
	}

	token, err := auth.NewTokenService(*secret).Issue(*email)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue token:", err)
		os.Exit(1)
	}

	out := output{
		Email:       *email,
		AccessToken: token,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.AccessToken)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
