package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/engine"
	"collectibleAMM/internal/model"
	"collectibleAMM/internal/storage"
)

// APIRespond is the envelope of every response.
type APIRespond struct {
	Result interface{} `json:"Result"`
	Error  *string     `json:"Error"`
}

// PoolView is a pool with its escrow balance.
type PoolView struct {
	model.Pool
	EscrowLamports uint64 `json:"escrow_lamports"`
	EscrowOpen     bool   `json:"escrow_open"`
}

// Server exposes read-only ledger queries and quotes over HTTP.
type Server struct {
	engine   *engine.Engine
	ledger   storage.Reader
	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

// NewServer builds a Server. gatherer may be nil to leave out /metrics.
func NewServer(eng *engine.Engine, ledger storage.Reader, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{engine: eng, ledger: ledger, gatherer: gatherer, logger: logger}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)

	r.GET("/health", s.APIHealthCheck)
	r.GET("/pools", s.APIListPools)
	r.GET("/pools/:address", s.APIGetPool)
	r.GET("/pools/:address/sell-states", s.APIGetSellStates)
	r.GET("/pools/:address/quote", s.APIQuote)
	r.GET("/dynamic-allowlists/:address", s.APIGetDynamicAllowlist)
	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}
	return r
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown api: %w", err)
	}
	return nil
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", time.Since(start)),
	)
}

func (s *Server) APIHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, APIRespond{Result: "ok"})
}

func (s *Server) APIListPools(c *gin.Context) {
	pools, err := s.ledger.ListPools(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	owner := c.Query("owner")
	if owner != "" {
		ownerKey, err := model.ParsePubkey(owner)
		if err != nil {
			c.JSON(http.StatusBadRequest, buildGinErrorRespond(err))
			return
		}
		filtered := pools[:0]
		for _, p := range pools {
			if p.Owner == ownerKey {
				filtered = append(filtered, p)
			}
		}
		pools = filtered
	}
	if pools == nil {
		pools = []model.Pool{}
	}
	c.JSON(http.StatusOK, APIRespond{Result: pools})
}

func (s *Server) APIGetPool(c *gin.Context) {
	addr, ok := parseAddress(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	pool, err := s.engine.Pool(ctx, addr)
	if err != nil {
		s.respondError(c, err)
		return
	}
	escrow, open, err := s.ledger.GetEscrow(ctx, addr)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIRespond{Result: PoolView{Pool: pool, EscrowLamports: escrow.Lamports, EscrowOpen: open}})
}

func (s *Server) APIGetSellStates(c *gin.Context) {
	addr, ok := parseAddress(c)
	if !ok {
		return
	}
	states, err := s.ledger.ListSellStates(c.Request.Context(), addr)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if states == nil {
		states = []model.SellState{}
	}
	c.JSON(http.StatusOK, APIRespond{Result: states})
}

func (s *Server) APIGetDynamicAllowlist(c *gin.Context) {
	addr, ok := parseAddress(c)
	if !ok {
		return
	}
	dyn, found, err := s.ledger.GetDynamicAllowlist(c.Request.Context(), addr)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if !found {
		s.respondError(c, fmt.Errorf("dynamic allowlist %s: %w", addr, ammerr.ErrDynamicAllowlistNotFound))
		return
	}
	c.JSON(http.StatusOK, APIRespond{Result: dyn})
}

// APIQuote prices a hypothetical fill. side=buy quotes the pool buying
// (fulfill-buy), side=sell the pool selling.
func (s *Server) APIQuote(c *gin.Context) {
	addr, ok := parseAddress(c)
	if !ok {
		return
	}
	args, err := parseQuoteArgs(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, buildGinErrorRespond(err))
		return
	}
	args.Pool = addr

	result, err := s.engine.Quote(c.Request.Context(), args)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIRespond{Result: result})
}

func parseQuoteArgs(c *gin.Context) (engine.QuoteArgs, error) {
	var args engine.QuoteArgs
	switch c.DefaultQuery("side", "sell") {
	case "buy":
		args.FulfillBuy = true
	case "sell":
	default:
		return args, fmt.Errorf("side must be buy or sell")
	}

	amount, err := strconv.ParseUint(c.DefaultQuery("amount", "1"), 10, 64)
	if err != nil {
		return args, fmt.Errorf("invalid amount: %w", err)
	}
	args.AssetAmount = amount

	maker, err := strconv.ParseInt(c.DefaultQuery("maker_fee_bp", "0"), 10, 16)
	if err != nil {
		return args, fmt.Errorf("invalid maker_fee_bp: %w", err)
	}
	args.MakerFeeBP = int16(maker)

	taker, err := strconv.ParseUint(c.DefaultQuery("taker_fee_bp", "0"), 10, 16)
	if err != nil {
		return args, fmt.Errorf("invalid taker_fee_bp: %w", err)
	}
	args.TakerFeeBP = uint16(taker)

	share, err := strconv.ParseUint(c.DefaultQuery("royalty_share_bp", "0"), 10, 16)
	if err != nil {
		return args, fmt.Errorf("invalid royalty_share_bp: %w", err)
	}
	args.RoyaltyShareBP = uint16(share)

	if mint := c.Query("asset"); mint != "" {
		key, err := model.ParsePubkey(mint)
		if err != nil {
			return args, err
		}
		kind, err := model.ParseAssetKind(c.DefaultQuery("asset_kind", model.AssetKindVanilla.String()))
		if err != nil {
			return args, err
		}
		args.Asset = &model.Asset{Kind: kind, Mint: key}
	}
	return args, nil
}

func parseAddress(c *gin.Context) (model.Pubkey, bool) {
	addr, err := model.ParsePubkey(c.Param("address"))
	if err != nil || addr.IsZero() {
		if err == nil {
			err = fmt.Errorf("address is required")
		}
		c.JSON(http.StatusBadRequest, buildGinErrorRespond(err))
		return model.Pubkey{}, false
	}
	return addr, true
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ammerr.ErrPoolNotFound), errors.Is(err, ammerr.ErrDynamicAllowlistNotFound):
		status = http.StatusNotFound
	case ammerr.IsEngine(err):
		status = http.StatusUnprocessableEntity
	default:
		s.logger.Error("api request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, buildGinErrorRespond(err))
}

func buildGinErrorRespond(err error) *APIRespond {
	errStr := err.Error()
	respond := APIRespond{
		Result: nil,
		Error:  &errStr,
	}
	return &respond
}
