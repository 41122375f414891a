// cmd/tools/hashpw/main.go
//
// Hashes a password with bcrypt. With -db and -email it writes the hash to
// that user row, creating the row if it does not exist yet; without them it
// just prints the hash:
//
//	go run ./cmd/tools/hashpw -password 'secret' -db build/finca.db -email admin@villadaniela.com
//	go run ./cmd/tools/hashpw -password 'secret'
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	var (
		password = flag.String("password", "", "Password to hash")
		cost     = flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
		dbPath   = flag.String("db", "", "Path to SQLite database (optional)")
		email    = flag.String("email", "", "User email to store the hash for (required with -db)")
	)
	flag.Parse()

	if *password == "" {
		log.Println("A password is required:")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if (*dbPath == "") != (*email == "") {
		log.Println("-db and -email must be given together:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), *cost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	if *dbPath == "" {
		fmt.Println(string(hash))
		return
	}

	sqlDB, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqlDB.Close()

	if err := upsertCredentials(sqlDB, *email, string(hash)); err != nil {
		log.Fatalf("Failed to store credentials: %v", err)
	}
	log.Printf("Stored credentials for %s", *email)
}

func upsertCredentials(sqlDB *sql.DB, email, hash string) error {
	_, err := sqlDB.Exec(`
		INSERT INTO users (email, hashed_password)
		VALUES (?, ?)
		ON CONFLICT(email) DO UPDATE SET
			hashed_password = excluded.hashed_password,
			updated_at = CURRENT_TIMESTAMP`,
		email, hash,
	)
	return err
}
