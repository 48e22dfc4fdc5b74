package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/floflo777/mbc20/api"
	"github.com/floflo777/mbc20/config"
	"github.com/floflo777/mbc20/core"
	"github.com/floflo777/mbc20/core/model"
	"github.com/floflo777/mbc20/journal"
	"github.com/floflo777/mbc20/signer"
	"github.com/floflo777/mbc20/utils/generics/must"
)

// referenceTick is the currency burned as the V2 deployment cost. It is
// deployed at boot when a nonzero cost is configured.
const referenceTick = "MBC"

func main() {
	app := &cli.App{
		Name:  "mbc20d",
		Usage: "mbc-20 settlement daemon: token ledgers, claim gateway, marketplace and read API",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "API port"},
			&cli.Uint64Flag{Name: "chain-id", Aliases: []string{"c"}, Usage: "Chain identifier baked into claim digests"},
			&cli.IntFlag{Name: "protocol-version", Aliases: []string{"v"}, Usage: "Protocol version (1 or 2)"},
			&cli.StringFlag{Name: "signer-key", Aliases: []string{"k"}, Usage: "Hex private key of the claim signer"},
			&cli.StringFlag{Name: "journal-path", Aliases: []string{"j"}, Usage: "SQLite journal path"},
			&cli.StringFlag{Name: "allocations", Aliases: []string{"a"}, Usage: "Path to the allocations JSON file"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("port") {
		cfg.APIPort = c.Int("port")
	}
	if c.IsSet("chain-id") {
		cfg.ChainID = c.Uint64("chain-id")
	}
	if c.IsSet("protocol-version") {
		cfg.ProtocolVersion = c.Int("protocol-version")
	}
	if c.IsSet("signer-key") {
		cfg.SignerKey = c.String("signer-key")
	}
	if c.IsSet("journal-path") {
		cfg.JournalPath = c.String("journal-path")
	}
	if c.IsSet("allocations") {
		cfg.AllocationsPath = c.String("allocations")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Development {
		logrus.SetLevel(logrus.DebugLevel)
	}

	sgn, err := signer.FromHex(cfg.SignerKey)
	if err != nil {
		return fmt.Errorf("failed to load signer key: %v", err)
	}
	operator := sgn.Address()
	logrus.Infof("operator and claim signer: %s", operator.Hex())

	store, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return fmt.Errorf("failed to open journal: %v", err)
	}
	defer store.Close()

	chain := core.NewChain(cfg.ChainID)
	chain.SetSink(store)

	var (
		registry core.Registry
		gateway  *core.ClaimManager
		market   *core.Marketplace
	)

	switch cfg.ProtocolVersion {
	case 1:
		claimFee := must.Must(cfg.ClaimFee())
		factoryAddr := chain.PredictAddress(operator, 1)
		gateway = core.NewClaimManager(chain, operator, factoryAddr, sgn.Address(), signer.Recoverer{},
			common.HexToAddress(cfg.Treasury), claimFee)
		factory := core.NewFactory(chain, operator, gateway.Address(),
			common.HexToAddress(cfg.TeamWallet), common.HexToAddress(cfg.RewardPool),
			common.HexToAddress(cfg.Treasury))
		registry = factory
		market = core.NewMarketplace(chain, operator, model.NativeToken)
		logrus.Infof("v1 stack deployed: gateway=%s factory=%s marketplace=%s",
			gateway.Address().Hex(), factory.Address().Hex(), market.Address().Hex())

	case 2:
		cost := must.Must(cfg.DeploymentCost())
		var refToken *core.Token
		if !cost.IsZero() {
			refToken = core.NewToken(chain, operator, core.TokenConfig{
				Name:      "mbc-20: " + referenceTick,
				Symbol:    referenceTick,
				Tick:      referenceTick,
				MaxSupply: model.Ether(1_000_000_000),
				Minter:    operator,
				Owner:     operator,
				Schedule:  core.ScheduleV2,
				Routes:    map[string]common.Address{core.FeeDeployer: operator},
			})
			logrus.Infof("reference token %s deployed at %s", referenceTick, refToken.Address().Hex())
		}
		factoryAddr := chain.PredictAddress(operator, 1)
		gateway = core.NewClaimManagerV2(chain, operator, factoryAddr, sgn.Address(), signer.Recoverer{})
		factory := core.NewFactoryV2(chain, operator, gateway.Address(), refToken, cost)
		registry = factory

		quote := model.NativeToken
		if refToken != nil {
			quote = refToken.Address()
		}
		market = core.NewMarketplace(chain, operator, quote)
		logrus.Infof("v2 stack deployed: gateway=%s factory=%s marketplace=%s cost=%s",
			gateway.Address().Hex(), factory.Address().Hex(), market.Address().Hex(), cost.Dec())

	default:
		return fmt.Errorf("unsupported protocol version %d", cfg.ProtocolVersion)
	}

	var source api.BalanceSource = emptyAllocations{}
	if cfg.AllocationsPath != "" {
		source, err = loadAllocations(cfg.AllocationsPath)
		if err != nil {
			return fmt.Errorf("failed to load allocations: %v", err)
		}
	}

	server := api.NewServer(chain, registry, gateway, market, sgn, source, cfg.APIPort)
	go server.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return server.Shutdown()
}
