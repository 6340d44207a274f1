// Command admintoken mints an operator access token signed with the server's
// JWT secret. Operators have no login flow; tokens are handed out with this tool.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/orderhub/backend/internal/infrastructure/auth"
	"github.com/orderhub/backend/internal/infrastructure/config"
	"github.com/orderhub/backend/internal/infrastructure/logger"
)

func main() {
	var (
		operator string
		role     string
		ttl      time.Duration
		verbose  bool
	)
	flag.StringVar(&operator, "operator", "", "Operator name carried in the token (required)")
	flag.StringVar(&role, "role", string(auth.RoleOperator), "Role: operator or admin")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime (default: jwt.access_token_expiration)")
	flag.BoolVar(&verbose, "v", false, "Log token details to stderr")
	flag.Parse()

	level := "warn"
	if verbose {
		level = "info"
	}
	log, err := logger.New(&logger.Config{
		Level:      level,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if operator == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	issued, err := auth.NewJWTService(cfg.JWT).GenerateAccessToken(operator, auth.Role(role), ttl)
	if err != nil {
		log.Fatal("Failed to issue token", zap.Error(err))
	}

	log.Info("Token issued",
		zap.String("operator", operator),
		zap.String("role", role),
		zap.Time("expires_at", issued.ExpiresAt),
	)
	fmt.Println(issued.AccessToken)
}
