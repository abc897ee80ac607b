// Command seed-admin prints the SQL to bootstrap the first admin account.
// Run it once, paste the output into psql, then log in normally.
package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 4 {
		log.Fatal("Usage: go run main.go <name> <email> <password>")
	}

	name, email, password := os.Args[1], os.Args[2], os.Args[3]

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	fmt.Printf(
		"INSERT INTO users (name, email, password_hash, role) VALUES ('%s', '%s', '%s', 'admin');\n",
		name, email, string(hash),
	)
}
