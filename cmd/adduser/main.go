// Command adduser creates an account directly against the database, for
// bootstrapping and operations. The password is read from the terminal
// without echo.
//
// Usage:
//
//	adduser -d <dsn> -name "Alice" -email alice@example.com
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/flagx"
	"github.com/dmitrijs2005/tasklist/internal/server/auth"
	"github.com/dmitrijs2005/tasklist/internal/server/config"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tasklist/internal/server/services"

	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"
)

func main() {
	cfg := config.LoadConfig()

	var name, email string
	args := flagx.FilterArgs(os.Args[1:], []string{"-name", "-email"})
	fs := flag.NewFlagSet("adduser", flag.ExitOnError)
	fs.StringVar(&name, "name", "", "display name")
	fs.StringVar(&email, "email", "", "account email")
	if err := fs.Parse(args); err != nil {
		log.Fatal(err)
	}
	if name == "" || email == "" {
		log.Fatal("-name and -email are required")
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		log.Fatal(err)
	}
	defer common.WipeByteArray(password)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatal(err)
	}

	codec := auth.NewCodec([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)
	as := services.NewAuthService(db, rm, codec, cfg)

	result, err := as.Register(ctx, name, email, string(password))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("created user %s (%s)\n", result.User.ID, result.User.Email)
}
