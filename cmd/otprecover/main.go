// otprecover is an offline recovery tool: it decrypts every account in a
// vault database and prints the Base32 secrets with their otpauth:// URIs so
// the accounts can be re-enrolled elsewhere. It deliberately bypasses the
// daemon's confirmation gating, so it asks for its own confirmation first.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	keyfileadapter "github.com/Codeplay77/otpvault/internal/adapter/driven/keyfile"
	sqliteadapter "github.com/Codeplay77/otpvault/internal/adapter/driven/sqlite"
	"github.com/Codeplay77/otpvault/internal/secrets"
	"github.com/Codeplay77/otpvault/internal/totp"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	dbPath := flag.String("db", "otpvault.db", "path to the vault database")
	keyPath := flag.String("key", "otpvault.key", "path to the master key file")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	if !*yes && !confirm() {
		fmt.Println("aborted")
		return nil
	}

	// Load, not LoadOrCreate: recovery must never invent a fresh key, it
	// could only decrypt nothing and would shadow the real one.
	masterKey, err := keyfileadapter.New(*keyPath).Load()
	if err != nil {
		return err
	}

	// NewDB takes the exclusive vault lock, so recovery fails fast while the
	// daemon is still running instead of reading behind its back.
	db, err := sqliteadapter.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}

	accounts, err := sqliteadapter.NewAccountRepo(db).ListAll(context.Background())
	if err != nil {
		return err
	}

	if len(accounts) == 0 {
		fmt.Println("no accounts stored")
		return nil
	}

	fmt.Printf("found %d account(s)\n", len(accounts))
	fmt.Println(strings.Repeat("=", 72))

	failed := 0
	for _, account := range accounts {
		key, err := secrets.Decrypt(masterKey, account.SecretCiphertext)
		if err != nil {
			// Report and keep going; one corrupt row must not block
			// recovery of the rest.
			failed++
			fmt.Printf("\naccount #%d %q: decryption failed\n", account.ID, account.Name)
			continue
		}

		secret := totp.EncodeSecret(key)
		fmt.Printf("\naccount #%d\n", account.ID)
		fmt.Printf("  name:    %s\n", account.Name)
		fmt.Printf("  issuer:  %s\n", orNone(account.Issuer))
		fmt.Printf("  secret:  %s\n", secret)
		fmt.Printf("  created: %s\n", account.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("  uri:     %s\n", totp.BuildURI(account.Name, account.Issuer, secret))
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("recovered %d of %d account(s)\n", len(accounts)-failed, len(accounts))

	if failed > 0 {
		return fmt.Errorf("%d account(s) could not be decrypted", failed)
	}
	return nil
}

// confirm asks the operator to acknowledge that every secret will be printed
// in plaintext. Anything but an exact "yes" aborts.
func confirm() bool {
	fmt.Print("This prints every stored secret in plaintext. Type 'yes' to continue: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(line) == "yes"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
