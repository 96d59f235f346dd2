package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
)

// Config holds all configuration values
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Stellar     StellarConfig
	Contracts   ContractsConfig
	Platform    PlatformConfig
	App         AppConfig
	Transaction TransactionConfig
	Signer      SignerConfig
	Security    SecurityConfig
	Jobs        JobsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds wallet session token configuration
type JWTConfig struct {
	Secret        string
	SessionExpiry time.Duration
}

// StellarConfig holds network endpoints
type StellarConfig struct {
	Network           string
	NetworkPassphrase string
	SorobanRPCURL     string
	HorizonURL        string
	ExplorerURL       string
}

// ContractsConfig holds deployed contract identifiers
type ContractsConfig struct {
	LotteryContractID  string
	NativeTokenAddress string
}

// PlatformConfig holds platform fee settings
type PlatformConfig struct {
	Address       string
	FeePercentage float64
}

// AppConfig holds lottery creation limits
type AppConfig struct {
	Name                   string
	Version                string
	DefaultLotteryDuration uint64
	MinParticipants        int
	MaxParticipants        int
}

// TransactionConfig holds submission and confirmation settings
type TransactionConfig struct {
	BaseFee        int64
	TimeoutSeconds int64
	PollInterval   time.Duration
	PollAttempts   int
}

// SignerConfig holds the custodial wallet seed
type SignerConfig struct {
	SecretSeed string
}

// SecurityConfig holds security encryption keys
type SecurityConfig struct {
	SessionEncryptionKey string
}

// JobsConfig holds background job settings
type JobsConfig struct {
	PendingTxEnabled  bool
	PendingTxInterval time.Duration
	PendingTxMaxAge   time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	stellarNetwork := getEnv("STELLAR_NETWORK", "testnet")
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "lotellar"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			SessionExpiry: getEnvAsDuration("JWT_SESSION_EXPIRY", 24*time.Hour),
		},
		Stellar: StellarConfig{
			Network:           stellarNetwork,
			NetworkPassphrase: getEnv("STELLAR_NETWORK_PASSPHRASE", defaultPassphrase(stellarNetwork)),
			SorobanRPCURL:     getEnv("SOROBAN_RPC_URL", "https://soroban-testnet.stellar.org:443"),
			HorizonURL:        getEnv("HORIZON_URL", "https://horizon-testnet.stellar.org"),
			ExplorerURL:       getEnv("STELLAR_EXPLORER_URL", "https://stellar.expert/explorer/"+stellarNetwork),
		},
		Contracts: ContractsConfig{
			LotteryContractID:  getEnv("LOTTERY_CONTRACT_ID", ""),
			NativeTokenAddress: getEnv("NATIVE_TOKEN_ADDRESS", ""),
		},
		Platform: PlatformConfig{
			Address:       getEnv("PLATFORM_ADDRESS", ""),
			FeePercentage: getEnvAsFloat("PLATFORM_FEE_PERCENTAGE", 5),
		},
		App: AppConfig{
			Name:                   getEnv("APP_NAME", "Lotellar"),
			Version:                getEnv("APP_VERSION", "1.0.0"),
			DefaultLotteryDuration: uint64(getEnvAsInt("DEFAULT_LOTTERY_DURATION", 86400)),
			MinParticipants:        getEnvAsInt("MIN_PARTICIPANTS", 2),
			MaxParticipants:        getEnvAsInt("MAX_PARTICIPANTS", 100),
		},
		Transaction: TransactionConfig{
			BaseFee:        int64(getEnvAsInt("TX_BASE_FEE", 100)),
			TimeoutSeconds: int64(getEnvAsInt("TX_TIMEOUT_SECONDS", 300)),
			PollInterval:   getEnvAsDuration("TX_POLL_INTERVAL", time.Second),
			PollAttempts:   getEnvAsInt("TX_POLL_ATTEMPTS", 10),
		},
		Signer: SignerConfig{
			SecretSeed: getEnv("SIGNER_SECRET_SEED", ""),
		},
		Security: SecurityConfig{
			SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
		},
		Jobs: JobsConfig{
			PendingTxEnabled:  getEnvAsBool("PENDING_TX_JOB_ENABLED", true),
			PendingTxInterval: getEnvAsDuration("PENDING_TX_INTERVAL", 30*time.Second),
			PendingTxMaxAge:   getEnvAsDuration("PENDING_TX_MAX_AGE", 24*time.Hour),
		},
	}
}

// Validate checks the values the ledger flows cannot run without
func (c *Config) Validate() error {
	var errs []error
	if c.Contracts.LotteryContractID == "" {
		errs = append(errs, errors.New("LOTTERY_CONTRACT_ID is required"))
	} else if _, err := strkey.Decode(strkey.VersionByteContract, c.Contracts.LotteryContractID); err != nil {
		errs = append(errs, fmt.Errorf("LOTTERY_CONTRACT_ID is not a contract address: %w", err))
	}
	if strings.TrimSpace(c.Stellar.NetworkPassphrase) == "" {
		errs = append(errs, errors.New("network passphrase is required"))
	}
	if c.App.MinParticipants < 1 || c.App.MinParticipants > c.App.MaxParticipants {
		errs = append(errs, fmt.Errorf("invalid participant range [%d, %d]", c.App.MinParticipants, c.App.MaxParticipants))
	} else if int64(c.App.MaxParticipants) > math.MaxUint32 {
		errs = append(errs, fmt.Errorf("MAX_PARTICIPANTS %d exceeds the contract limit", c.App.MaxParticipants))
	}
	if c.Transaction.PollAttempts < 1 {
		errs = append(errs, errors.New("TX_POLL_ATTEMPTS must be at least 1"))
	}
	return errors.Join(errs...)
}

const futureNetworkPassphrase = "Test SDF Future Network ; October 2022"

func defaultPassphrase(name string) string {
	switch name {
	case "mainnet", "public":
		return network.PublicNetworkPassphrase
	case "futurenet":
		return futureNetworkPassphrase
	default:
		return network.TestNetworkPassphrase
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
