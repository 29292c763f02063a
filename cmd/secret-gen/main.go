package main

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"talka.backend/internal/config"
	"talka.backend/pkg/crypto"
	"talka.backend/pkg/signer"
)

var (
	randomToken = crypto.GenerateRandomToken
	newP256Key  = func() (*ecdh.PrivateKey, error) { return ecdh.P256().GenerateKey(rand.Reader) }
)

// run prints fresh values for every signing secret the server reads, plus the
// public JWK matching the generated ECDSA key.
func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("secret-gen", flag.ContinueOnError)
	secretBytes := fs.Int("bytes", 32, "random bytes per HMAC secret")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *secretBytes < 16 {
		return fmt.Errorf("invalid bytes: %d (minimum 16)", *secretBytes)
	}

	meshSecret, err := randomToken(*secretBytes)
	if err != nil {
		return fmt.Errorf("failed to generate mesh secret: %w", err)
	}
	widgetSecret, err := randomToken(*secretBytes)
	if err != nil {
		return fmt.Errorf("failed to generate widget secret: %w", err)
	}

	key, err := newP256Key()
	if err != nil {
		return fmt.Errorf("failed to generate signing key: %w", err)
	}
	rawKey := hex.EncodeToString(key.Bytes())

	jwk, err := signer.PublicJWK(rawKey)
	if err != nil {
		return fmt.Errorf("failed to build public jwk: %w", err)
	}
	jwkJSON, err := json.Marshal(jwk)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "%s=%s\n", config.EnvMeshTokenSecret, meshSecret)
	_, _ = fmt.Fprintf(out, "%s=%s\n", config.EnvWidgetHMACSecret, widgetSecret)
	_, _ = fmt.Fprintf(out, "%s=%s\n", config.EnvWidgetSigningKey, rawKey)
	_, _ = fmt.Fprintf(out, "# public key\n%s\n", jwkJSON)
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}
