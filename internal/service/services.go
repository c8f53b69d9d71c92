package service

import (
	"github.com/gatepass-ng/gatepass/internal/bank"
	"github.com/gatepass-ng/gatepass/internal/payment"
	postgres "github.com/gatepass-ng/gatepass/internal/repository/postgres"
	redis "github.com/gatepass-ng/gatepass/internal/repository/redis"
	"github.com/gatepass-ng/gatepass/internal/service/events"
	"github.com/gatepass-ng/gatepass/internal/service/resale"
	"github.com/gatepass-ng/gatepass/internal/service/verify"
	"github.com/gatepass-ng/gatepass/internal/service/wallet"
	"github.com/gatepass-ng/gatepass/internal/token"
)

type Services struct {
	Events *events.Service
	Resale *resale.Service
	Verify *verify.Service
	Wallet *wallet.Service
}

type Config struct {
	Resale resale.Config
	Verify verify.Config
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	pubsub *redis.TicketsPubSub,
	orders *redis.OrderStore,
	registry *bank.Registry,
	gateway *payment.Gateway,
	gen token.CodeGenerator,
	cfg Config,
) *Services {
	return &Services{
		Events: events.New(store.Events(), cache),
		Resale: resale.New(
			store.Tickets(),
			store.Events(),
			resale.NewStoreSettler(store),
			orders,
			registry,
			gateway,
			gateway,
			gateway,
			cache,
			pubsub,
			cfg.Resale,
		),
		Verify: verify.New(store.Tickets(), gen, cfg.Verify),
		Wallet: wallet.New(store.Wallet(), registry, gateway),
	}
}
