package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/JoshDFN/cleardeck/adapters/agent"
	"github.com/JoshDFN/cleardeck/adapters/events"
	"github.com/JoshDFN/cleardeck/adapters/identity"
	"github.com/JoshDFN/cleardeck/adapters/ledger"
	"github.com/JoshDFN/cleardeck/adapters/provider"
	"github.com/JoshDFN/cleardeck/adapters/signer"
	"github.com/JoshDFN/cleardeck/adapters/store"
	"github.com/JoshDFN/cleardeck/core"
	"github.com/JoshDFN/cleardeck/service"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := configFromEnv()

	// Redis backs both the persisted session and the event stream.
	redisURL := envOr("REDIS_URL", "redis://localhost:6379/0")
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: redisClient},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create event publisher")
	}

	sessions := store.NewRedisStore(redisClient)
	idProvider := provider.New(sessions,
		provider.WithProviderLogger(logger.With().Str("component", "provider").Logger()),
	)
	transports := agent.NewFactory(
		agent.WithAgentLogger(logger.With().Str("component", "agent").Logger()),
	)

	auth := service.NewAuthService(cfg, idProvider, transports,
		service.WithAuthLogger(logger.With().Str("component", "auth").Logger()),
		service.WithEventPublisher(events.NewWatermillPublisher(publisher)),
		service.WithDevIdentities(identity.DevIdentity),
	)

	dispatcher := service.NewDispatcher(auth,
		service.WithDispatcherLogger(logger.With().Str("component", "dispatcher").Logger()),
	)
	anonymous := service.NewDispatcher(
		service.NewAnonymousAgents(cfg, transports),
		service.WithDispatcherLogger(logger.With().Str("component", "dispatcher").Logger()),
	)

	wallet := service.NewWalletService(cfg,
		signer.NewRelay(signer.WithRelayLogger(logger.With().Str("component", "signer").Logger())),
		ledger.NewClient(anonymous, cfg.ICPLedger),
		ledger.NewClient(anonymous, cfg.CKBTCLedger),
		service.WithWalletLogger(logger.With().Str("component", "wallet").Logger()),
	)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := auth.Init(ctx)
	if session.Authenticated {
		logger.Info().Str("principal", session.Principal).Msg("session restored")
	} else {
		logger.Info().Msg("no session, interactive login required")
	}

	if len(os.Args) < 2 {
		return
	}

	switch os.Args[1] {
	case "login":
		principal, err := auth.Login(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("login failed")
		}
		logger.Info().Str("principal", principal).Msg("logged in")
	case "dev-login":
		seed := "dev-player-1"
		if len(os.Args) > 2 {
			seed = os.Args[2]
		}
		principal, err := auth.DevLogin(ctx, seed)
		if err != nil {
			logger.Fatal().Err(err).Msg("dev login failed")
		}
		logger.Info().Str("principal", principal).Msg("logged in as dev identity")
	case "logout":
		auth.Logout(ctx)
		logger.Info().Msg("logged out")
	case "tables":
		out, err := service.Guard(ctx, auth, func(ctx context.Context) ([]byte, error) {
			return dispatcher.Query(ctx, cfg.LobbyService, "list_tables", nil)
		}, nil)
		if err != nil {
			logger.Fatal().Err(err).Msg("lobby query failed")
		}
		logger.Info().RawJSON("tables", out).Msg("open tables")
	case "history":
		out, err := service.Guard(ctx, auth, func(ctx context.Context) ([]byte, error) {
			return dispatcher.Query(ctx, cfg.HistoryService, "list_hands", nil)
		}, nil)
		if err != nil {
			logger.Fatal().Err(err).Msg("history query failed")
		}
		logger.Info().RawJSON("hands", out).Msg("hand history")
	case "connect":
		kind := core.WalletKindICP
		if len(os.Args) > 2 && os.Args[2] == core.WalletKindICRC.String() {
			kind = core.WalletKindICRC
		}
		if err := wallet.Connect(ctx, kind); err != nil {
			logger.Fatal().Err(err).Msg("wallet connect failed")
		}
		conn := wallet.Connection()
		logger.Info().
			Str("principal", conn.Principal).
			Str("icp", formatBalance(conn.ICPBalance)).
			Str("ckbtc", formatBalance(conn.CKBTCBalance)).
			Msg("wallet connected")
	default:
		logger.Fatal().Str("command", os.Args[1]).Msg("unknown command")
	}
}

func formatBalance(minor *uint64) string {
	if minor == nil {
		return "unknown"
	}
	return core.FormatAmount(*minor)
}

func configFromEnv() core.Config {
	network := core.Network(envOr("CLEARDECK_NETWORK", string(core.NetworkLocal)))
	cfg := core.DefaultConfig(network)

	if v := os.Getenv("CLEARDECK_API_HOST"); v != "" {
		cfg.APIHost = v
	}
	if v := os.Getenv("CLEARDECK_IDENTITY_PROVIDER_URL"); v != "" {
		cfg.IdentityProviderURL = v
	}
	if v := os.Getenv("CLEARDECK_WALLET_SIGNER_URL"); v != "" {
		cfg.WalletSignerURL = v
	}
	if v := os.Getenv("CLEARDECK_LOBBY_SERVICE"); v != "" {
		cfg.LobbyService = v
	}
	if v := os.Getenv("CLEARDECK_HISTORY_SERVICE"); v != "" {
		cfg.HistoryService = v
	}
	if v := os.Getenv("CLEARDECK_ICP_LEDGER"); v != "" {
		cfg.ICPLedger = v
	}
	if v := os.Getenv("CLEARDECK_CKBTC_LEDGER"); v != "" {
		cfg.CKBTCLedger = v
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
