package vault

import "strings"

// Type represents the type of vault.
type Type string

const (
	// TypeDotEnv reads secrets from the environment and an optional .env file.
	TypeDotEnv Type = "dotenv"
)

// SchemeDotEnv prefixes URIs resolved by the dotenv vault.
const SchemeDotEnv = "dotenv://"

// KeyFromURI strips the scheme from a secret URI.
func KeyFromURI(uri string) string {
	return strings.TrimPrefix(uri, SchemeDotEnv)
}
