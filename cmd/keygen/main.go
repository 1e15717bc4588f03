// Command keygen prints a random key suitable for SECRETS_KEY.
package main

import (
	"fmt"
	"os"

	"github.com/dmitrymomot/guardkit/pkg/secrets"
)

func main() {
	key, err := secrets.GenerateKey()
	if err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}
	fmt.Println(key)
}
