package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/roadguard/reporter-middleware/pkg/config"
)

// anchorReport(bytes32)
var anchorSelector = crypto.Keccak256([]byte("anchorReport(bytes32)"))[:4]

// Anchorer submits report digests to the registry contract.
type Anchorer interface {
	AnchorReport(ctx context.Context, digest common.Hash) (common.Hash, error)
}

// Client represents an EVM registry client
type Client struct {
	config     *config.ChainConfig
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	address    common.Address
	registry   common.Address
	chainID    *big.Int
	logger     *zap.Logger
}

// NewClient connects to the chain RPC and loads the anchor signing key.
func NewClient(cfg *config.ChainConfig, logger *zap.Logger) (*Client, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain RPC: %w", err)
	}

	privateKey, err := crypto.HexToECDSA(cfg.AnchorPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load anchor private key: %w", err)
	}

	address := crypto.PubkeyToAddress(privateKey.PublicKey)
	registry := common.HexToAddress(cfg.RegistryContract)

	logger.Info("Connected to registry chain",
		zap.Int64("chain_id", cfg.ChainID),
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("registry_contract", registry.Hex()),
		zap.String("anchor_address", address.Hex()))

	return &Client{
		config:     cfg,
		client:     client,
		privateKey: privateKey,
		address:    address,
		registry:   registry,
		chainID:    big.NewInt(cfg.ChainID),
		logger:     logger,
	}, nil
}

// Close closes the underlying RPC client
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// AnchorReport submits an anchorReport(bytes32) transaction carrying the
// report digest and returns the transaction hash without waiting for a
// receipt.
func (c *Client) AnchorReport(ctx context.Context, digest common.Hash) (common.Hash, error) {
	nonce, err := c.client.PendingNonceAt(ctx, c.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to suggest gas price: %w", err)
	}

	data := make([]byte, 0, len(anchorSelector)+common.HashLength)
	data = append(data, anchorSelector...)
	data = append(data, digest.Bytes()...)

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &c.registry,
		Gas:      c.config.GasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.privateKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign anchor transaction: %w", err)
	}

	if err := c.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send anchor transaction: %w", err)
	}

	c.logger.Info("Anchor transaction submitted",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.String("digest", digest.Hex()))

	return signed.Hash(), nil
}
