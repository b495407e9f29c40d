package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// runPasswd resets the admin password. It prompts when -password is
// omitted.
func runPasswd(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("passwd", flag.ContinueOnError)
	fs.SetOutput(stderr)

	dbPath := fs.String("db", "", "Path to database file (default $DB_PATH or site.db)")
	passwordFlag := fs.String("password", "", "New password (optional, will prompt if omitted)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *dbPath == "" {
		*dbPath = getEnvString("DB_PATH", defaultConfig().DBPath)
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "New password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	db, err := openDB(*dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := initDB(db); err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}

	created, err := ensureAdminAccount(db, password)
	if err != nil {
		return err
	}
	if !created {
		if err := setAccountPassword(db, adminUsername, password); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "Password for %s updated\n", adminUsername)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
