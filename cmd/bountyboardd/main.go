package main

import (
	"flag"
	"io"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"

	"bountyboard/config"
	"bountyboard/core/events"
	"bountyboard/core/state"
	"bountyboard/native/badge"
	"bountyboard/native/bounty"
	"bountyboard/native/token"
	"bountyboard/observability/logging"
	"bountyboard/rpc"
	"bountyboard/storage"
)

// initialGrant seeds the mint authority on an empty ledger so rewards can be
// distributed to requesters out of band.
var initialGrant = new(big.Int).Mul(big.NewInt(1_000_000), new(big.Int).Exp(big.NewInt(10), big.NewInt(token.Decimals), nil))

type logEmitter struct {
	log *slog.Logger
}

func (e logEmitter) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	e.log.Info("event", "type", evt.EventType())
}

func main() {
	configPath := flag.String("config", "./config.toml", "path to the daemon configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	var sinks []io.Writer
	if cfg.LogFile != "" {
		sinks = append(sinks, logging.RotatingWriter(cfg.LogFile))
	}
	logger := logging.Setup("bountyboardd", cfg.Env, sinks...)

	vault, err := config.Address(cfg.VaultAddress)
	if err != nil {
		logger.Error("parse vault address", "err", err)
		os.Exit(1)
	}
	badgeOwner, err := config.Address(cfg.BadgeOwner)
	if err != nil {
		logger.Error("parse badge owner", "err", err)
		os.Exit(1)
	}
	mintAuthority, err := config.Address(cfg.MintAuthority)
	if err != nil {
		logger.Error("parse mint authority", "err", err)
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "state"))
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	manager := state.NewManager(db)

	tokens := token.NewLedger(manager)
	tokens.SetMintAuthority(mintAuthority)
	supply, err := tokens.TotalSupply()
	if err != nil {
		logger.Error("read token supply", "err", err)
		os.Exit(1)
	}
	if supply.Sign() == 0 {
		if err := tokens.Mint(mintAuthority, mintAuthority, initialGrant); err != nil {
			logger.Error("seed token supply", "err", err)
			os.Exit(1)
		}
		logger.Info("seeded token supply", "amount", initialGrant.String())
	}

	badges := badge.NewLedger(manager, badgeOwner)
	badges.SetEmitter(logEmitter{log: logger})
	if err := badges.AddIssuer(badgeOwner, vault); err != nil {
		logger.Error("authorize board issuer", "err", err)
		os.Exit(1)
	}

	engine := bounty.NewEngine()
	engine.SetState(bounty.NewLedger(manager))
	engine.SetToken(bounty.NewVaultMover(tokens, vault))
	engine.SetBadgeIssuer(bounty.NewLedgerIssuer(badges, vault))
	engine.SetVault(vault)
	engine.SetEmitter(logEmitter{log: logger})

	server := rpc.NewServer(engine, badges, tokens, logger)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("rpc server stopped", "err", err)
		os.Exit(1)
	}
}
