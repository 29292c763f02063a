package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"talka.backend/pkg/crypto"
)

var (
	printfFn = fmt.Printf
	fatalfFn = log.Fatalf
)

// resolveSecret takes the raw secret from the first argument or, when absent, the
// API_SECRET variable, so it does not have to appear in shell history.
func resolveSecret(args []string) string {
	if len(args) > 0 {
		return strings.TrimSpace(args[0])
	}
	return strings.TrimSpace(os.Getenv("API_SECRET"))
}

func main() {
	secret := resolveSecret(os.Args[1:])
	if secret == "" {
		fatalfFn("usage: hash-gen <raw-secret> (or set API_SECRET)")
		return
	}

	printfFn("token_hash=%s\n", crypto.HashToken(secret))
}
