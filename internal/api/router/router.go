package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "gopos/docs" // Registra a especificação Swagger gerada

	"gopos/internal/api/cart"
	"gopos/internal/api/catalog"
	"gopos/internal/api/sale"
	"gopos/internal/api/user"
	"gopos/internal/domain"
	"gopos/internal/pkg/cache"
	"gopos/internal/pkg/logger"
	"gopos/internal/pkg/middleware"
)

// Handlers reúne os handlers já inicializados por injeção de dependências.
type Handlers struct {
	User    *user.Handler
	Catalog *catalog.Handler
	Cart    *cart.Handler
	Sale    *sale.Handler
}

// RateLimit configura o limitador global. Client nil desliga o limitador.
type RateLimit struct {
	Client      cache.Client
	MaxRequests int
	Period      time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, tokenSvc middleware.TokenService, limit RateLimit, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	auth := middleware.NewAuthMiddleware(tokenSvc, log)
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.PermissionMiddleware(log, domain.RoleAdmin)(next))
	}
	staff := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.PermissionMiddleware(log, domain.RoleAdmin, domain.RoleCashier)(next))
	}

	// --- 1. Health Check e documentação ---
	mux.HandleFunc("GET /ping", PingHandler)
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// --- 2. Usuários (públicas) ---
	mux.HandleFunc("POST /v1/register", h.User.RegisterUserHandler)
	mux.HandleFunc("POST /v1/login", h.User.LoginUserHandler)

	// --- 3. Catálogo e custos ---
	mux.HandleFunc("GET /v1/catalog", staff(h.Catalog.ListCatalogHandler))
	mux.HandleFunc("POST /v1/catalog/reload", admin(h.Catalog.ReloadCatalogHandler))
	mux.HandleFunc("GET /v1/catalog/{id}/cost", staff(h.Catalog.ItemCostHandler))
	mux.HandleFunc("POST /v1/costing/quote", staff(h.Catalog.QuoteHandler))

	// --- 4. Carrinho do operador ---
	mux.HandleFunc("GET /v1/cart", staff(h.Cart.GetCartHandler))
	mux.HandleFunc("DELETE /v1/cart", staff(h.Cart.ClearCartHandler))
	mux.HandleFunc("POST /v1/cart/items", staff(h.Cart.AddItemHandler))
	mux.HandleFunc("PUT /v1/cart/items/{id}", staff(h.Cart.UpdateQuantityHandler))
	mux.HandleFunc("DELETE /v1/cart/items/{id}", staff(h.Cart.RemoveItemHandler))

	// --- 5. Vendas ---
	mux.HandleFunc("POST /v1/sales/checkout", staff(h.Sale.CheckoutHandler))
	mux.HandleFunc("GET /v1/sales/{id}", staff(h.Sale.GetSaleHandler))
	mux.HandleFunc("POST /v1/sales/{id}/reconcile", admin(h.Sale.ReconcileHandler))

	// --- 6. Middlewares globais ---
	if limit.Client == nil {
		return mux
	}
	return middleware.RateLimiter(limit.Client, limit.MaxRequests, limit.Period, log)(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
