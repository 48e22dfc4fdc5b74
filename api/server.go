// Package api exposes read endpoints over the settlement state and the
// claim-signature endpoint backed by the authorised signer.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/ethereum/go-ethereum/common"

	"github.com/floflo777/mbc20/core"
	"github.com/floflo777/mbc20/signer"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout = 10 * time.Second
)

// BalanceSource reports the cumulative off-chain allocation a wallet has
// earned for a tick. Claim signatures are issued against this total.
type BalanceSource interface {
	TotalAllocation(wallet common.Address, tick string) (*uint256.Int, error)
}

// Server serves the HTTP API.
type Server struct {
	router *gin.Engine
	port   int

	server *http.Server

	chain    *core.Chain
	registry core.Registry
	gateway  *core.ClaimManager
	market   *core.Marketplace
	signer   *signer.Signer
	source   BalanceSource
}

// corsMiddleware adds CORS headers to all responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// NewServer creates a new HTTP server instance
func NewServer(chain *core.Chain, registry core.Registry, gateway *core.ClaimManager, market *core.Marketplace, sgn *signer.Signer, source BalanceSource, port int) *Server {
	router := gin.Default()

	router.Use(corsMiddleware())

	server := &Server{
		router:   router,
		port:     port,
		chain:    chain,
		registry: registry,
		gateway:  gateway,
		market:   market,
		signer:   sgn,
		source:   source,
	}

	server.routes()

	return server
}

// Start starts the HTTP server
func (s *Server) Start() {
	addr := fmt.Sprintf("0.0.0.0:%v", s.port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	logrus.Infof("Starting HTTP server on %s", addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.Fatalf("Failed to start the HTTP server: %v", err)
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	logrus.Info("Shutting down HTTP server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	logrus.Info("HTTP server shut down successfully")
	return nil
}
