// Package ledger adapts the solana-go RPC client to the narrow account and
// balance lookups the pool analytics core needs.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"

	"github.com/poollens/poollens-go/poollens"
)

// Client wraps a shared *rpc.Client, which is safe for concurrent use.
type Client struct {
	rpc *rpc.Client
	log *logrus.Logger
}

// New builds a ledger client against the given RPC endpoint.
func New(rpcURL string, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Client{rpc: rpc.New(rpcURL), log: log}
}

// NewFromRPC wraps an existing RPC client, for callers that already hold one.
func NewFromRPC(client *rpc.Client, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Client{rpc: client, log: log}
}

// GetAccountBytes fetches the raw data of one account at confirmed
// commitment. A missing account maps to poollens.ErrAccountNotFound so
// callers can branch without string matching.
func (c *Client) GetAccountBytes(ctx context.Context, address string) ([]byte, error) {
	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid account address %q: %w", address, err)
	}

	out, err := c.rpc.GetAccountInfoWithOpts(ctx, pk, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, poollens.ErrAccountNotFound
		}
		return nil, fmt.Errorf("getAccountInfo %s: %w", address, err)
	}
	if out == nil || out.Value == nil {
		return nil, poollens.ErrAccountNotFound
	}

	data := out.Value.Data.GetBinary()
	c.log.WithFields(logrus.Fields{
		"account": address,
		"bytes":   len(data),
	}).Debug("fetched account data")
	return data, nil
}

// GetTokenAccountBalance returns the raw token amount held by one SPL token
// account at confirmed commitment.
func (c *Client) GetTokenAccountBalance(ctx context.Context, address string) (uint64, error) {
	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return 0, fmt.Errorf("invalid token account %q: %w", address, err)
	}

	out, err := c.rpc.GetTokenAccountBalance(ctx, pk, rpc.CommitmentConfirmed)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return 0, poollens.ErrAccountNotFound
		}
		return 0, fmt.Errorf("getTokenAccountBalance %s: %w", address, err)
	}
	if out == nil || out.Value == nil {
		return 0, poollens.ErrAccountNotFound
	}

	amount, err := strconv.ParseUint(out.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("token balance %s: bad amount %q: %w", address, out.Value.Amount, err)
	}
	return amount, nil
}
