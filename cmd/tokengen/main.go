// Command tokengen prints a management API token for one owner.
//
//	tokengen -owner 123456789 [-ttl 720h]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/saransh1220/filelink/internal/shared/infrastructure/config"
	"github.com/saransh1220/filelink/internal/shared/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if err := run(os.Args[1:], cfg.JWT, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "tokengen:", err)
		os.Exit(2)
	}
}

func run(args []string, jwtCfg config.JWTConfig, out io.Writer) error {
	fs := flag.NewFlagSet("tokengen", flag.ContinueOnError)
	owner := fs.String("owner", "", "owner id to put in the token subject")
	ttl := fs.Duration("ttl", jwtCfg.Expiry, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *owner == "" {
		return errors.New("-owner is required")
	}
	if *ttl <= 0 {
		return errors.New("-ttl must be positive")
	}

	token, err := utils.GenerateToken(*owner, jwtCfg.Secret, *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}

