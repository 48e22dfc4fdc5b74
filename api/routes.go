package api

// routes sets up the routes for the HTTP server.
func (s *Server) routes() {
	s.router.GET("/api/v1/tokens", s.listTokens)
	s.router.GET("/api/v1/tokens/:tick", s.getToken)
	s.router.GET("/api/v1/tokens/:tick/balance/:address", s.getBalance)
	s.router.GET("/api/v1/tokens/:tick/nonce/:address", s.getNonce)
	s.router.GET("/api/v1/tokens/:tick/allowance/:owner/:spender", s.getAllowance)
	s.router.GET("/api/v1/orders", s.listOrders)
	s.router.GET("/api/v1/orders/:id", s.getOrder)
	s.router.POST("/api/v1/claim-signature", s.claimSignature)
}
