package main

import (
	"errors"
	"fmt"
	"time"

	"cardshelf/internal/auth"
	"cardshelf/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

var (
	tokenUser string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an HS256 bearer token for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Environment == "prod" {
			return errors.New("refusing to mint tokens in prod")
		}

		verifier, err := auth.NewHMACVerifier(cfg.JWTSecret, logger)
		if err != nil {
			return fmt.Errorf("AUTH_JWT_SECRET: %w", err)
		}

		now := time.Now()
		token, err := verifier.SignToken(&models.AccessClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   tokenUser,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			},
			Role: "authenticated",
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "Subject (user id)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}
