package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultHTTPAddr = ":8080"
const defaultChannelID = "SecureBankApp"
const defaultChannelKey = "SecureBankKey001"
const defaultLedgerDifficulty = 4
const defaultTokenExpiryMinutes = 5
const defaultCurrency = "USD"

type Config struct {
	DatabaseDSN        string
	HTTPAddr           string
	ChannelID          string
	ChannelKey         string
	QRSecret           string
	Currency           string
	LedgerDifficulty   int
	TokenExpiryMinutes int
	ModelWeightsPath   string
}

func Load() (Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		DatabaseDSN:        strings.TrimSpace(os.Getenv("DATABASE_DSN")),
		HTTPAddr:           strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		ChannelID:          strings.TrimSpace(os.Getenv("CHANNEL_ID")),
		ChannelKey:         strings.TrimSpace(os.Getenv("CHANNEL_KEY")),
		QRSecret:           strings.TrimSpace(os.Getenv("QR_SECRET")),
		Currency:           strings.TrimSpace(os.Getenv("CURRENCY")),
		ModelWeightsPath:   strings.TrimSpace(os.Getenv("MODEL_WEIGHTS_PATH")),
		LedgerDifficulty:   defaultLedgerDifficulty,
		TokenExpiryMinutes: defaultTokenExpiryMinutes,
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if cfg.ChannelID == "" {
		cfg.ChannelID = defaultChannelID
	}
	if cfg.ChannelKey == "" {
		cfg.ChannelKey = defaultChannelKey
	}
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}
	if cfg.QRSecret == "" {
		return Config{}, fmt.Errorf("QR_SECRET is required")
	}

	if raw := strings.TrimSpace(os.Getenv("LEDGER_DIFFICULTY")); raw != "" {
		difficulty, err := strconv.Atoi(raw)
		if err != nil || difficulty < 1 || difficulty > 8 {
			return Config{}, fmt.Errorf("LEDGER_DIFFICULTY must be an integer between 1 and 8")
		}
		cfg.LedgerDifficulty = difficulty
	}

	if raw := strings.TrimSpace(os.Getenv("TOKEN_EXPIRY_MINUTES")); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes < 1 {
			return Config{}, fmt.Errorf("TOKEN_EXPIRY_MINUTES must be a positive integer")
		}
		cfg.TokenExpiryMinutes = minutes
	}

	if cfg.DatabaseDSN != "" {
		cfg.DatabaseDSN = normalizeConnectionString(cfg.DatabaseDSN)
	}

	return cfg, nil
}

func normalizeConnectionString(raw string) string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
