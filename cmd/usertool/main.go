// Command usertool provisions server accounts. There is no self-service
// registration endpoint, so operators create users directly in the database.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/avasiljevs/stockroom/internal/common"
	"github.com/avasiljevs/stockroom/internal/server/models"
	"github.com/avasiljevs/stockroom/internal/server/repositories/repomanager"
)

func main() {
	dsn := flag.String("d", os.Getenv("DATABASE_DSN"), "database connection string")
	username := flag.String("u", "", "username of the account to create")
	flag.Parse()

	if *username == "" {
		log.Fatal("username is required (-u)")
	}
	if *dsn == "" {
		log.Fatal("database connection string is required (-d or DATABASE_DSN)")
	}

	fmt.Println("Enter password")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("password read error: %v", err)
	}
	defer common.WipeByteArray(password)

	if len(password) == 0 {
		log.Fatal("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("password hash error: %v", err)
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	user, err := m.Users(db).Create(ctx, &models.User{
		Username:     *username,
		PasswordHash: string(hash),
	})
	if err != nil {
		log.Fatalf("user create error: %v", err)
	}

	fmt.Printf("created user %s (%s)\n", user.Username, user.ID)
}
