package secrets

// Config holds the process-wide encryption key.
type Config struct {
	Key string `env:"SECRETS_KEY"`
}
