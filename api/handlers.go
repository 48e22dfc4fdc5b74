package api

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/floflo777/mbc20/core"
	"github.com/floflo777/mbc20/core/model"
)

// TokenResponse describes a deployed token.
type TokenResponse struct {
	Tick        string `json:"tick"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Deployer    string `json:"deployer"`
	MaxSupply   string `json:"max_supply"`
	TotalSupply string `json:"total_supply"`
	Burned      string `json:"burned"`
}

// OrderResponse describes a marketplace order.
type OrderResponse struct {
	ID            uint64 `json:"id"`
	Seller        string `json:"seller"`
	Token         string `json:"token"`
	Amount        string `json:"amount"`
	PricePerToken string `json:"price_per_token"`
	PaymentToken  string `json:"payment_token"`
	Active        bool   `json:"active"`
}

// ClaimSignatureRequest represents the JSON body for signature issuance
type ClaimSignatureRequest struct {
	Wallet string `json:"wallet" binding:"required"`
	Tick   string `json:"tick" binding:"required"`
}

// ClaimSignatureResponse carries everything the wallet needs to submit a claim.
type ClaimSignatureResponse struct {
	Wallet      string `json:"wallet"`
	Tick        string `json:"tick"`
	TotalAmount string `json:"total_amount"`
	Nonce       uint64 `json:"nonce"`
	ChainID     uint64 `json:"chain_id"`
	Signature   string `json:"signature"`
}

// tokens are denominated in wei internally; responses carry both the raw
// value and nothing else, formatted as whole-token decimal strings.
func formatTokens(v *uint256.Int) string {
	return decimal.NewFromBigInt(v.ToBig(), -18).String()
}

func tokenResponse(tok *core.Token, info model.TokenInfo) TokenResponse {
	return TokenResponse{
		Tick:        tok.Tick(),
		Name:        tok.Name(),
		Address:     tok.Address().Hex(),
		Deployer:    info.Deployer.Hex(),
		MaxSupply:   formatTokens(tok.MaxSupply()),
		TotalSupply: formatTokens(tok.TotalSupply()),
		Burned:      formatTokens(info.Burned),
	}
}

// listTokens is a handler for the /tokens endpoint.
func (s *Server) listTokens(c *gin.Context) {
	total := s.registry.TotalTokens()
	out := make([]TokenResponse, 0, total)
	for i := 0; i < total; i++ {
		tok := s.registry.TokenAt(i)
		info, _ := s.registry.InfoByTick(tok.Tick())
		out = append(out, tokenResponse(tok, info))
	}
	c.JSON(http.StatusOK, gin.H{"tokens": out})
}

// getToken is a handler for the /tokens/:tick endpoint.
func (s *Server) getToken(c *gin.Context) {
	tick, err := model.NormalizeTick(c.Param("tick"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tick: " + err.Error()})
		return
	}

	tok, ok := s.registry.TokenByTick(tick)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "token not found"})
		return
	}
	info, _ := s.registry.InfoByTick(tick)

	c.JSON(http.StatusOK, tokenResponse(tok, info))
}

// getBalance is a handler for the /tokens/:tick/balance/:address endpoint.
func (s *Server) getBalance(c *gin.Context) {
	tick, err := model.NormalizeTick(c.Param("tick"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tick: " + err.Error()})
		return
	}

	addr := c.Param("address")
	if !common.IsHexAddress(addr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address format"})
		return
	}

	tok, ok := s.registry.TokenByTick(tick)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "token not found"})
		return
	}

	wallet := common.HexToAddress(addr)
	balance := tok.BalanceOf(wallet)
	c.JSON(http.StatusOK, gin.H{
		"tick":    tick,
		"address": wallet.Hex(),
		"balance": formatTokens(balance),
		"wei":     balance.Dec(),
		"burned":  formatTokens(tok.BurnedByUser(wallet)),
	})
}

// getAllowance is a handler for the /tokens/:tick/allowance/:owner/:spender
// endpoint.
func (s *Server) getAllowance(c *gin.Context) {
	tick, err := model.NormalizeTick(c.Param("tick"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tick: " + err.Error()})
		return
	}

	ownerParam, spenderParam := c.Param("owner"), c.Param("spender")
	if !common.IsHexAddress(ownerParam) || !common.IsHexAddress(spenderParam) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address format"})
		return
	}

	tok, ok := s.registry.TokenByTick(tick)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "token not found"})
		return
	}

	owner := common.HexToAddress(ownerParam)
	spender := common.HexToAddress(spenderParam)
	allowance := tok.Allowance(owner, spender)
	c.JSON(http.StatusOK, gin.H{
		"tick":      tick,
		"owner":     owner.Hex(),
		"spender":   spender.Hex(),
		"allowance": formatTokens(allowance),
		"wei":       allowance.Dec(),
	})
}

// getNonce is a handler for the /tokens/:tick/nonce/:address endpoint.
func (s *Server) getNonce(c *gin.Context) {
	tick, err := model.NormalizeTick(c.Param("tick"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tick: " + err.Error()})
		return
	}

	addr := c.Param("address")
	if !common.IsHexAddress(addr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address format"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tick":  tick,
		"nonce": s.gateway.Nonce(common.HexToAddress(addr), tick),
	})
}

// listOrders is a handler for the /orders endpoint. Pass ?active=true to
// filter out filled and cancelled orders.
func (s *Server) listOrders(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	count := s.market.OrderCount()
	out := make([]OrderResponse, 0, count)
	for id := uint64(0); id < count; id++ {
		order, ok := s.market.Order(id)
		if !ok {
			continue
		}
		if activeOnly && !order.Active {
			continue
		}
		out = append(out, orderResponse(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

// getOrder is a handler for the /orders/:id endpoint.
func (s *Server) getOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, ok := s.market.Order(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	c.JSON(http.StatusOK, orderResponse(order))
}

func orderResponse(order model.Order) OrderResponse {
	return OrderResponse{
		ID:            order.ID,
		Seller:        order.Seller.Hex(),
		Token:         order.Token.Hex(),
		Amount:        formatTokens(order.Amount),
		PricePerToken: order.PricePerToken.Dec(),
		PaymentToken:  order.PaymentToken.Hex(),
		Active:        order.Active,
	}
}

// claimSignature is a handler for the /claim-signature endpoint. It signs the
// wallet's cumulative allocation for the tick at the wallet's current nonce.
func (s *Server) claimSignature(c *gin.Context) {
	var req ClaimSignatureRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if !common.IsHexAddress(req.Wallet) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}

	tick, err := model.NormalizeTick(req.Tick)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tick: " + err.Error()})
		return
	}

	if _, ok := s.registry.TokenByTick(tick); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "token not found"})
		return
	}

	wallet := common.HexToAddress(req.Wallet)

	total, err := s.source.TotalAllocation(wallet, tick)
	if err != nil {
		logrus.Errorf("allocation lookup for %s/%s: %v", wallet.Hex(), tick, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve allocation"})
		return
	}
	if total.IsZero() {
		c.JSON(http.StatusNotFound, gin.H{"error": "nothing to claim"})
		return
	}

	nonce := s.gateway.Nonce(wallet, tick)
	chainID := s.chain.ChainID()

	sig, err := s.signer.SignClaim(wallet, tick, total, nonce, chainID)
	if err != nil {
		logrus.Errorf("sign claim for %s/%s: %v", wallet.Hex(), tick, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign claim"})
		return
	}

	c.JSON(http.StatusOK, ClaimSignatureResponse{
		Wallet:      wallet.Hex(),
		Tick:        tick,
		TotalAmount: total.Dec(),
		Nonce:       nonce,
		ChainID:     chainID,
		Signature:   hexutil.Encode(sig),
	})
}
