package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"lotellar.backend/internal/config"
	"lotellar.backend/internal/domain/entities"
	"lotellar.backend/internal/infrastructure/blockchain"
	"lotellar.backend/internal/usecases"
	"lotellar.backend/pkg/logger"
	"lotellar.backend/pkg/utils"
)

const usage = `usage: lottery-cli <command> [flags]

commands:
  list       [-status all|active|completed] [-page N] [-limit N]
  completed
  create     -name NAME -fee XLM -max N [-duration SECONDS] [-as ADDRESS]
  enter      -id LOTTERY_ID [-as ADDRESS]`

type lotteryRuntime interface {
	CreateLottery(ctx context.Context, address string, input *entities.CreateLotteryInput) (*entities.LotteryMutationResult, error)
	EnterLottery(ctx context.Context, address, lotteryID string) (*entities.LotteryMutationResult, error)
	ListLotteries(ctx context.Context, status entities.LotteryStatus, pagination utils.PaginationParams) ([]entities.Lottery, utils.PaginationMeta, error)
}

type cliDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	// prepare returns the runtime and the address it signs with by default
	prepare func(ctx context.Context, cfg *config.Config) (lotteryRuntime, string, io.Closer, error)
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultCLIDeps() cliDeps {
	return cliDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: prepareRuntime,
		out:     os.Stdout,
	}
}

func prepareRuntime(ctx context.Context, cfg *config.Config) (lotteryRuntime, string, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, "", nil, fmt.Errorf("invalid configuration: %w", err)
	}
	keyring, err := blockchain.NewKeyring(cfg.Signer.SecretSeed)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to load signer keys: %w", err)
	}
	var defaultAddress string
	if w := keyring.Default(); w != nil {
		defaultAddress, _ = w.GetAddress(ctx)
	}

	factory := blockchain.NewClientFactory()
	rpcClient, err := factory.GetSorobanClient(ctx, cfg.Stellar.SorobanRPCURL)
	if err != nil {
		return nil, "", nil, err
	}
	ledger := blockchain.NewLedger(rpcClient, factory.GetAccountLoader(cfg.Stellar.HorizonURL))

	orchestrator := usecases.NewTransactionOrchestrator(ledger, usecases.OrchestratorConfig{
		ContractID:        cfg.Contracts.LotteryContractID,
		NetworkPassphrase: cfg.Stellar.NetworkPassphrase,
		ExplorerURL:       cfg.Stellar.ExplorerURL,
		BaseFee:           cfg.Transaction.BaseFee,
		TimeoutSeconds:    cfg.Transaction.TimeoutSeconds,
		Poll:              utils.PollConfig{Attempts: cfg.Transaction.PollAttempts, Interval: cfg.Transaction.PollInterval},
	}, nil)
	lotteries := usecases.NewLotteryUsecase(
		orchestrator,
		usecases.NewLotteryReader(orchestrator),
		usecases.KeyringWallets{Keyring: keyring},
		usecases.ParticipantLimits{Min: cfg.App.MinParticipants, Max: cfg.App.MaxParticipants},
		cfg.App.DefaultLotteryDuration,
	)
	return lotteries, defaultAddress, closerFunc(func() error { factory.Close(); return nil }), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func runCLI(ctx context.Context, args []string, deps cliDeps) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	if deps.loadEnv == nil {
		deps.loadEnv = func() error { return godotenv.Load() }
	}
	if deps.loadCfg == nil {
		deps.loadCfg = config.Load
	}
	if deps.prepare == nil {
		deps.prepare = prepareRuntime
	}
	if deps.out == nil {
		deps.out = os.Stdout
	}

	command, rest := args[0], args[1:]
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		status   = fs.String("status", "all", "status filter: all, active or completed")
		page     = fs.Int("page", 1, "page number")
		limit    = fs.Int("limit", 0, "page size, 0 for all")
		name     = fs.String("name", "", "lottery name")
		fee      = fs.Float64("fee", 0, "entry fee in XLM")
		maxCount = fs.Int("max", 0, "maximum participants")
		duration = fs.Uint64("duration", 0, "duration in seconds, 0 for the configured default")
		id       = fs.String("id", "", "ledger lottery id")
		as       = fs.String("as", "", "signing address, defaults to the first configured signer")
	)
	switch command {
	case "list", "completed", "create", "enter":
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
	if err := fs.Parse(rest); err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := deps.loadCfg()

	runtime, defaultAddress, closer, err := deps.prepare(ctx, cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	signer := strings.TrimSpace(*as)
	if signer == "" {
		signer = defaultAddress
	}

	var result interface{}
	switch command {
	case "list", "completed":
		filter := entities.LotteryStatusCompleted
		if command == "list" {
			var ok bool
			if filter, ok = entities.ParseLotteryStatus(*status); !ok {
				return fmt.Errorf("invalid status %q", *status)
			}
		}
		items, meta, listErr := runtime.ListLotteries(ctx, filter, utils.GetPaginationParams(*page, *limit))
		if listErr != nil {
			return fmt.Errorf("failed to fetch lotteries: %w", listErr)
		}
		result = map[string]interface{}{"items": items, "meta": meta}
	case "create":
		result, err = runtime.CreateLottery(ctx, signer, &entities.CreateLotteryInput{
			Name:            *name,
			EntryFee:        *fee,
			Duration:        *duration,
			MaxParticipants: *maxCount,
		})
	case "enter":
		if strings.TrimSpace(*id) == "" {
			return errors.New("enter: -id is required")
		}
		result, err = runtime.EnterLottery(ctx, signer, *id)
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", command, err)
	}

	enc := json.NewEncoder(deps.out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func main() {
	logger.Init("development")
	if err := runCLI(context.Background(), os.Args[1:], defaultCLIDeps()); err != nil {
		log.Fatal(err)
	}
}
