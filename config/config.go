package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	Development bool
	// API configuration
	APIPort int
	// Chain configuration
	ChainID uint64
	// ProtocolVersion selects the deployed stack: 1 for the treasury-run
	// gateway, 2 for permissionless deployment.
	ProtocolVersion int
	// Signer configuration
	SignerKey string
	// V1 fee routing
	Treasury   string
	TeamWallet string
	RewardPool string
	// ClaimFeeWei is the native fee attached to every V1 claim.
	ClaimFeeWei string
	// DeploymentCostWei is the reference-token burn charged per V2 deploy.
	DeploymentCostWei string
	// Journal configuration
	JournalPath string
	// AllocationsPath points to a JSON file of cumulative per-wallet
	// allocations the signer will attest to. Empty disables signing.
	AllocationsPath string
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development:     getEnvAsBool("DEVELOPMENT", false),
		APIPort:         getEnvAsInt("API_PORT", 8080),
		ChainID:         getEnvAsUint64("CHAIN_ID", 4200),
		ProtocolVersion: getEnvAsInt("PROTOCOL_VERSION", 2),
		SignerKey:       getEnv("SIGNER_KEY", ""),
		Treasury:        getEnv("TREASURY_ADDRESS", ""),
		TeamWallet:      getEnv("TEAM_WALLET_ADDRESS", ""),
		RewardPool:      getEnv("REWARD_POOL_ADDRESS", ""),

		ClaimFeeWei:       getEnv("CLAIM_FEE_WEI", "1000000000000000"),
		DeploymentCostWei: getEnv("DEPLOYMENT_COST_WEI", "0"),

		JournalPath:     getEnv("JOURNAL_PATH", "mbc20.db"),
		AllocationsPath: getEnv("ALLOCATIONS_PATH", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.ProtocolVersion != 1 && c.ProtocolVersion != 2 {
		return fmt.Errorf("PROTOCOL_VERSION must be 1 or 2, got %d", c.ProtocolVersion)
	}

	if c.SignerKey == "" {
		return fmt.Errorf("SIGNER_KEY is required")
	}

	if c.ProtocolVersion == 1 {
		for name, addr := range map[string]string{
			"TREASURY_ADDRESS":    c.Treasury,
			"TEAM_WALLET_ADDRESS": c.TeamWallet,
			"REWARD_POOL_ADDRESS": c.RewardPool,
		} {
			if addr == "" {
				return fmt.Errorf("%s is required for protocol version 1", name)
			}
			if !common.IsHexAddress(addr) {
				return fmt.Errorf("invalid %s format: %s", name, addr)
			}
		}
	}

	if _, err := c.ClaimFee(); err != nil {
		return err
	}
	if _, err := c.DeploymentCost(); err != nil {
		return err
	}

	if c.JournalPath == "" {
		return fmt.Errorf("JOURNAL_PATH is required")
	}

	return nil
}

// ClaimFee parses ClaimFeeWei as a decimal wei amount.
func (c *Config) ClaimFee() (*uint256.Int, error) {
	return parseWei("CLAIM_FEE_WEI", c.ClaimFeeWei)
}

// DeploymentCost parses DeploymentCostWei as a decimal wei amount.
func (c *Config) DeploymentCost() (*uint256.Int, error) {
	return parseWei("DEPLOYMENT_COST_WEI", c.DeploymentCostWei)
}

func parseWei(name, value string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", name)
	}
	return v, nil
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsUint64(name string, defaultValue uint64) uint64 {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseUint(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
