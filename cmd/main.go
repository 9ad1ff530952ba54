package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"gopos/config"
	"gopos/internal/pkg/cache"
	"gopos/internal/pkg/database"
	"gopos/internal/pkg/logger"
	"gopos/internal/pkg/token"

	// Camadas para Injeção de Dependências
	cartapi "gopos/internal/api/cart"
	"gopos/internal/api/catalog"
	"gopos/internal/api/router"
	"gopos/internal/api/sale"
	"gopos/internal/api/user"
	"gopos/internal/cart"
	"gopos/internal/repository/catalogrepo"
	"gopos/internal/repository/pendingrepo"
	"gopos/internal/repository/salerepo"
	"gopos/internal/repository/userrepo"
	"gopos/internal/service/catalogservice"
	"gopos/internal/service/saleservice"
	"gopos/internal/service/userservice"
)

// @title GoPOS API
// @version 1.0
// @description Motor de transações de ponto de venda: catálogo, custos, carrinho e finalização de vendas.
// @host localhost:8080
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	logg := logger.NewLogger(cfg.LogLevel)
	defer logger.Sync(logg)
	logg.Info("Configurações carregadas.", map[string]interface{}{"env": cfg.Environment, "decrement_mode": cfg.StockDecrementMode})

	// 1. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL, database.DefaultPool)
	if err != nil {
		logg.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	logg.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis). Sem Redis o PDV segue sem cache, sem rate limit e sem reconciliação guardada.
	var (
		cacheClient cache.Client
		pending     saleservice.PendingStore
	)
	redisClient, err := cache.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		logg.Warn("Redis indisponível; seguindo sem cache.", map[string]interface{}{"addr": cfg.RedisAddr, "error": err.Error()})
		redisClient.Close()
	} else {
		defer redisClient.Close()
		cacheClient = redisClient
		pending = pendingrepo.NewPendingRepository(redisClient, cfg.CacheTimeout, 0, logg)
		logg.Info("Conexão Redis estabelecida.", nil)
	}

	// 2. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios
	catalogRepo := catalogrepo.NewCatalogRepository(db, cacheClient, cfg.DBTimeout, cfg.CatalogCacheTTL, logg)
	saleRepo := salerepo.NewSaleRepository(db, cfg.DBTimeout, logg)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, logg)

	// B. Serviços
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	userSvc := userservice.NewService(userRepo, tokenSvc, cfg.AdminEmails, logg)
	catalogSvc := catalogservice.NewService(catalogRepo, logg)
	saleSvc := saleservice.NewService(saleRepo, catalogRepo, catalogSvc, pending, logg, saleservice.Options{
		Mode:         cfg.StockDecrementMode,
		Currency:     cfg.Currency,
		MaxRetries:   cfg.ReconcileMaxRetries,
		RetryBackoff: cfg.ReconcileBackoff,
	})

	// Carga inicial do catálogo. Uma falha aqui não impede o servidor de subir.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 2*cfg.DBTimeout)
	if _, err := catalogSvc.Reload(loadCtx); err != nil {
		logg.Warn("Catálogo inicial não carregado; use POST /v1/catalog/reload.", map[string]interface{}{"error": err.Error()})
	}
	cancelLoad()

	// C. Handlers
	carts := cart.NewStore()
	handlers := router.Handlers{
		User:    user.NewHandler(userSvc, logg),
		Catalog: catalog.NewHandler(catalogSvc, logg),
		Cart:    cartapi.NewHandler(carts, catalogSvc, logg),
		Sale:    sale.NewHandler(saleSvc, carts, logg),
	}

	// 3. Roteador e Servidor
	r := router.NewRouter(handlers, tokenSvc, router.RateLimit{
		Client:      cacheClient,
		MaxRequests: cfg.RateLimitMaxRequests,
		Period:      cfg.RateLimitPeriod,
	}, logg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 4. Execução e Graceful Shutdown
	go func() {
		logg.Info("Servidor GoPOS ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logg.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logg.Error("Desligamento do servidor forçado.", err)
	}

	logg.Info("Servidor encerrado com sucesso.", nil)
}
