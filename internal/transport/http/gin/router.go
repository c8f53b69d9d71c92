package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gatepass-ng/gatepass/internal/bank"
	redisrepo "github.com/gatepass-ng/gatepass/internal/repository/redis"
	"github.com/gatepass-ng/gatepass/internal/service"
	"github.com/gatepass-ng/gatepass/internal/service/events"
	"github.com/gatepass-ng/gatepass/internal/service/resale"
	"github.com/gatepass-ng/gatepass/internal/service/verify"
	"github.com/gatepass-ng/gatepass/internal/service/wallet"
)

type Deps struct {
	Services *service.Services
	Banks    *bank.Registry
	Idem     *redisrepo.IdempotencyStore
	Limiter  *redisrepo.SlidingWindowLimiter
	Logger   *slog.Logger
	// JWTSecret signs access tokens issued by the identity provider.
	JWTSecret []byte
}

func NewRouter(d Deps, middlewares ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(d.Logger), MetricsMiddleware(), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health + metrics
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public API
	r.GET("/events", handleListEvents(d.Services))
	r.GET("/events/:id", handleGetEvent(d.Services))
	r.GET("/events/:id/resale", handleListResale(d.Services))
	r.GET("/events/:id/categories", handleListCategories(d.Services))
	r.GET("/banks", handleListBanks(d.Banks))
	r.GET("/verify-ticket", handleVerifyData(d.Services))
	r.POST("/payments/confirm", handleConfirmPayment(d.Services))

	// Authenticated API
	auth := r.Group("/", AuthMiddleware(d.JWTSecret))
	{
		auth.POST("/events", handleCreateEvent(d.Services))
		auth.GET("/events/mine", handleMyEvents(d.Services))
		auth.PUT("/events/:id", handleUpdateEvent(d.Services))
		auth.PATCH("/events/:id/active", handleToggleActive(d.Services))
		auth.POST("/events/:id/categories", handleCreateCategory(d.Services))

		auth.GET("/tickets/my", handleMyTickets(d.Services))
		auth.GET("/tickets/:id/token", handleIssueToken(d.Services))
		auth.POST("/tickets/list", handleListTicket(d.Services, d.Idem))
		auth.POST("/tickets/buy", handleBuyTicket(d.Services, d.Idem, d.Limiter))
		auth.POST("/tickets/verify", handleVerifyTicket(d.Services))

		auth.GET("/wallet/balance", handleBalance(d.Services))
		auth.POST("/wallet/withdraw", handleWithdraw(d.Services))
		auth.GET("/wallet/transactions", handleTransactions(d.Services))
	}

	return r
}

// --- Handlers ---

// @Summary  List upcoming events
// @Param    limit  query  int  false  "page size"
// @Param    offset query  int  false  "offset"
// @Success  200  {array}  domain.Event
// @Router   /events [get]
func handleListEvents(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseIntDefault(c.Query("limit"), 20)
		offset := parseIntDefault(c.Query("offset"), 0)

		out, err := svcs.Events.List(c.Request.Context(), limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, out, "public, max-age=30", true)
	}
}

// @Summary  Get event
// @Param    id  path  string  true  "Event ID"
// @Success  200  {object}  domain.Event
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{id} [get]
func handleGetEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, err := svcs.Events.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, e, "public, max-age=60", true)
	}
}

// @Summary  List active resale listings for an event
// @Param    id  path  string  true  "Event ID"
// @Success  200  {array}  resale.Listing
// @Router   /events/{id}/resale [get]
func handleListResale(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Resale.ListingsByEvent(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, out, "public, max-age=15", true)
	}
}

// @Summary  List supported banks
// @Success  200  {array}  domain.Bank
// @Router   /banks [get]
func handleListBanks(registry *bank.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		banks, err := registry.Banks(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, banks, "public, max-age=3600", true)
	}
}

// @Summary  Create event
// @Param    req  body  CreateEventRequest  true  "payload"
// @Success  201  {object}  domain.Event
// @Failure  403  {object}  ErrorResponse
// @Router   /events [post]
func handleCreateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		date, err := parseRFC3339(req.Date)
		if err != nil {
			badRequest(c, "invalid date (RFC3339)")
			return
		}

		e, err := svcs.Events.Create(c.Request.Context(), actorFrom(c), events.CreateRequest{
			Name:        req.Name,
			Description: req.Description,
			Location:    req.Location,
			Category:    req.Category,
			BannerURL:   req.BannerURL,
			Price:       req.Price,
			Date:        date,
			MaxTickets:  req.MaxTickets,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, e)
	}
}

// @Summary  Update event
// @Param    id   path  string              true  "Event ID"
// @Param    req  body  CreateEventRequest  true  "payload"
// @Success  200  {object}  domain.Event
// @Failure  403  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{id} [put]
func handleUpdateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		date, err := parseRFC3339(req.Date)
		if err != nil {
			badRequest(c, "invalid date (RFC3339)")
			return
		}

		e, err := svcs.Events.Update(c.Request.Context(), actorFrom(c), c.Param("id"), events.CreateRequest{
			Name:        req.Name,
			Description: req.Description,
			Location:    req.Location,
			Category:    req.Category,
			BannerURL:   req.BannerURL,
			Price:       req.Price,
			Date:        date,
			MaxTickets:  req.MaxTickets,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, e)
	}
}

// @Summary  List my events (organizer)
// @Success  200  {array}  domain.Event
// @Router   /events/mine [get]
func handleMyEvents(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Events.Mine(c.Request.Context(), actorFrom(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Toggle event visibility
// @Param    id  path  string  true  "Event ID"
// @Success  200  {object}  ToggleActiveResponse
// @Router   /events/{id}/active [patch]
func handleToggleActive(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		active, err := svcs.Events.ToggleActive(c.Request.Context(), actorFrom(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ToggleActiveResponse{ID: id, IsActive: active})
	}
}

// @Summary  List ticket categories for an event
// @Param    id  path  string  true  "Event ID"
// @Success  200  {array}  domain.TicketCategory
// @Router   /events/{id}/categories [get]
func handleListCategories(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Events.Categories(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, out, "public, max-age=30", true)
	}
}

// @Summary  Add a ticket category to an event
// @Param    id   path  string                 true  "Event ID"
// @Param    req  body  CreateCategoryRequest  true  "payload"
// @Success  201  {object}  domain.TicketCategory
// @Failure  403  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{id}/categories [post]
func handleCreateCategory(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		cat, err := svcs.Events.AddCategory(c.Request.Context(), actorFrom(c), c.Param("id"), events.CategoryRequest{
			Name:       req.Name,
			Price:      req.Price,
			MaxTickets: req.MaxTickets,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}

// @Summary  List my tickets
// @Success  200  {array}  domain.TicketView
// @Router   /tickets/my [get]
func handleMyTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Resale.MyTickets(c.Request.Context(), actorFrom(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Issue QR verification URL for a ticket
// @Param    id  path  string  true  "Ticket ID"
// @Success  200  {object}  IssueTokenResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /tickets/{id}/token [get]
func handleIssueToken(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		url, err := svcs.Verify.IssueToken(c.Request.Context(), actorFrom(c), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, IssueTokenResponse{URL: url})
	}
}

// @Summary  List a ticket for resale (idempotent)
// @Param    req  body  ListTicketRequest  true  "payload"
// @Header   201  {string}  Idempotency-Key  "echo"
// @Success  201  {object}  domain.Ticket
// @Failure  409  {object}  ErrorResponse  "ticket not listable / idem in progress"
// @Router   /tickets/list [post]
func handleListTicket(svcs *service.Services, idem *redisrepo.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		replay := beginIdem(c, idem, func(key string) string {
			return redisrepo.KeyIdemListing(req.TicketID, key)
		})
		if replay == nil {
			return
		}

		listed, err := svcs.Resale.List(c.Request.Context(), actorFrom(c), resale.ListingRequest{
			TicketID:      req.TicketID,
			ResalePrice:   req.ResalePrice,
			BankCode:      req.BankCode,
			AccountNumber: req.AccountNumber,
			Narration:     req.Narration,
		})
		if err != nil {
			replay.abandon(c)
			respondErr(c, err)
			return
		}

		replay.finish(c, http.StatusCreated, listed)
	}
}

// @Summary  Buy a ticket (primary or resale, idempotent)
// @Param    req  body  BuyTicketRequest  true  "payload"
// @Header   201  {string}  Idempotency-Key  "echo"
// @Success  201  {object}  resale.BuyResult
// @Failure  409  {object}  ErrorResponse
// @Failure  429  {object}  ErrorResponse  "rate limited"
// @Router   /tickets/buy [post]
func handleBuyTicket(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	limiter *redisrepo.SlidingWindowLimiter,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BuyTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if limiter != nil {
			allowed, _, retryAfter, err := limiter.Allow(c.Request.Context(), "ip:"+c.ClientIP())
			if err == nil && !allowed {
				c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
				return
			}
		}

		actor := actorFrom(c)

		replay := beginIdem(c, idem, func(key string) string {
			return redisrepo.KeyIdemPurchase(actor.UserID, key)
		})
		if replay == nil {
			return
		}

		res, err := svcs.Resale.Buy(c.Request.Context(), actor, resale.BuyRequest{
			EventID:          req.EventID,
			Quantity:         req.Quantity,
			TicketCategoryID: req.TicketCategoryID,
			ResaleTicketID:   req.ResaleTicketID,
		})
		if err != nil {
			replay.abandon(c)
			respondErr(c, err)
			return
		}

		replay.finish(c, http.StatusCreated, res)
	}
}

// @Summary  Verify and redeem a ticket at the gate
// @Param    req  body  VerifyTicketRequest  true  "payload"
// @Success  200  {object}  verify.Result
// @Router   /tickets/verify [post]
func handleVerifyTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		res, err := svcs.Verify.Verify(c.Request.Context(), verify.Request{
			TicketID: req.TicketID,
			Code:     req.Code,
			EventID:  req.EventID,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary  Verify a scanned QR payload
// @Param    data  query  string  true  "QR data parameter"
// @Success  200  {object}  verify.Result
// @Router   /verify-ticket [get]
func handleVerifyData(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Query() already unescaped the parameter once; re-escape so the
		// codec sees the raw wire form.
		res, err := svcs.Verify.VerifyData(c.Request.Context(), url.QueryEscape(c.Query("data")))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary  Confirm a payment (gateway callback)
// @Param    req  body  ConfirmPaymentRequest  true  "payload"
// @Success  200  {object}  resale.BuyResult
// @Failure  402  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /payments/confirm [post]
func handleConfirmPayment(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ConfirmPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		res, err := svcs.Resale.ConfirmPayment(c.Request.Context(), req.Reference)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary  Wallet balance
// @Success  200  {object}  BalanceResponse
// @Router   /wallet/balance [get]
func handleBalance(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := svcs.Wallet.Balance(c.Request.Context(), actorFrom(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, BalanceResponse{Balance: b})
	}
}

// @Summary  Withdraw to a bank account
// @Param    req  body  WithdrawRequest  true  "payload"
// @Success  200  {object}  domain.Transaction
// @Failure  409  {object}  ErrorResponse  "insufficient balance"
// @Router   /wallet/withdraw [post]
func handleWithdraw(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req WithdrawRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		tx, err := svcs.Wallet.Withdraw(c.Request.Context(), actorFrom(c), wallet.WithdrawRequest{
			Amount:        req.Amount,
			BankCode:      req.BankCode,
			AccountNumber: req.AccountNumber,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, tx)
	}
}

// @Summary  Wallet transaction history
// @Success  200  {array}  domain.Transaction
// @Router   /wallet/transactions [get]
func handleTransactions(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Wallet.Transactions(c.Request.Context(), actorFrom(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// --- Idempotency ---

// idemReplay tracks one idempotent request from lock to saved result.
type idemReplay struct {
	idem *redisrepo.IdempotencyStore
	key  string
	echo string
}

// beginIdem replays a previously saved response for the request's
// Idempotency-Key, or acquires the in-progress lock. A nil return means the
// response has already been written (replay or 409) and the handler must
// stop. Requests without a key proceed with a no-op replay.
func beginIdem(c *gin.Context, idem *redisrepo.IdempotencyStore, storageKey func(string) string) *idemReplay {
	echo := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if idem == nil || echo == "" {
		return &idemReplay{}
	}

	key := storageKey(echo)

	if payload, ok, _ := idem.GetResult(c.Request.Context(), key); ok {
		c.Header("Idempotency-Key", echo)
		c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
		return nil
	}

	locked, err := idem.AcquireLock(c.Request.Context(), key, 60*time.Second)
	if err != nil {
		respondErr(c, err)
		return nil
	}
	if !locked {
		if payload, ok, _ := idem.GetResult(c.Request.Context(), key); ok {
			c.Header("Idempotency-Key", echo)
			c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
			return nil
		}
		c.Header("Retry-After", "1")
		c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
		return nil
	}

	return &idemReplay{idem: idem, key: key, echo: echo}
}

// abandon releases the lock after a failed attempt so the client can retry
// with the same key.
func (r *idemReplay) abandon(c *gin.Context) {
	if r.idem != nil {
		_ = r.idem.Release(c.Request.Context(), r.key)
	}
}

// finish saves the response for future replays and writes it out.
func (r *idemReplay) finish(c *gin.Context, status int, v any) {
	if r.idem != nil {
		if b, err := json.Marshal(v); err == nil {
			_ = r.idem.SaveResult(c.Request.Context(), r.key, string(b))
		}
		c.Header("Idempotency-Key", r.echo)
	}
	c.JSON(status, v)
}

// --- Helpers ---

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// events service
	case errors.Is(err, events.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	case errors.Is(err, events.ErrInvalidEvent):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid event"})
	case errors.Is(err, events.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
	// resale service
	case errors.Is(err, resale.ErrInvalidResalePrice):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid resale price"})
	case errors.Is(err, resale.ErrInvalidPayoutDestination):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid payout destination"})
	case errors.Is(err, resale.ErrInvalidPurchaseTarget):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "exactly one of ticketCategoryId and resaleTicketId must be set"})
	case errors.Is(err, resale.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid quantity"})
	case errors.Is(err, resale.ErrSelfPurchaseRejected):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "cannot buy your own ticket"})
	case errors.Is(err, resale.ErrTicketNotListable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "ticket not listable"})
	case errors.Is(err, resale.ErrTicketStateConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "ticket state conflict"})
	case errors.Is(err, resale.ErrSoldOut):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "sold out"})
	case errors.Is(err, resale.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "ticket not found"})
	case errors.Is(err, resale.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
	case errors.Is(err, resale.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "order not found"})
	case errors.Is(err, resale.ErrPaymentNotConfirmed):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: "payment not confirmed"})
	// verify service
	case errors.Is(err, verify.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "ticket not found"})
	case errors.Is(err, verify.ErrTicketNotIssuable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "ticket not issuable"})
	// wallet service
	case errors.Is(err, wallet.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount"})
	case errors.Is(err, wallet.ErrInvalidDestination):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid destination"})
	case errors.Is(err, wallet.ErrInsufficientBalance):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "insufficient balance"})
	// bank registry
	case errors.Is(err, bank.ErrUnknownBankCode), errors.Is(err, bank.ErrBadAccountNumber):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid payout destination"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
