package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Modos de aplicação das baixas de estoque de uma venda.
const (
	DecrementBestEffort = "best_effort" // Item a item, com relatório de falha parcial
	DecrementAtomic     = "atomic"      // Uma transação condicional para todos os itens
)

// Config armazena todas as configurações do aplicativo GoPOS.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Banco de Dados (PostgreSQL)
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache (Redis)
	RedisAddr       string
	CacheTimeout    time.Duration
	CatalogCacheTTL time.Duration

	// Segurança (JWT)
	JWTSecretKey string
	TokenExpiry  time.Duration
	AdminEmails  []string // E-mails que recebem o papel admin no registro

	// Rate Limiting
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration

	// Ponto de venda
	Currency            string
	StockDecrementMode  string
	ReconcileMaxRetries int
	ReconcileBackoff    time.Duration
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
func LoadConfig() *Config {
	cfg := &Config{
		// 1. Geral
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// 2. Banco de Dados (PostgreSQL)
		// mustGetEnv garante que a aplicação não inicie se não houver credenciais de DB
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		DBTimeout:   getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second,

		// 3. Cache (Redis)
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTimeout:    getDurationEnv("CACHE_TIMEOUT_SEC", 10) * time.Second,
		CatalogCacheTTL: getDurationEnv("CATALOG_CACHE_TTL_SEC", 30) * time.Second,

		// 4. Segurança (JWT)
		JWTSecretKey: mustGetEnv("JWT_SECRET_KEY"),
		TokenExpiry:  getDurationEnv("JWT_EXPIRY_MIN", 60) * time.Minute,
		AdminEmails:  getListEnv("ADMIN_EMAILS"),

		// 5. Rate Limiting
		RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitPeriod:      getDurationEnv("RATE_LIMIT_PERIOD_MIN", 1) * time.Minute,

		// 6. Ponto de venda
		Currency:            getEnv("STORE_CURRENCY", "ARS"),
		StockDecrementMode:  getDecrementMode("STOCK_DECREMENT_MODE"),
		ReconcileMaxRetries: getIntEnv("RECONCILE_MAX_RETRIES", 3),
		ReconcileBackoff:    getDurationEnv("RECONCILE_BACKOFF_MS", 200) * time.Millisecond,
	}

	return cfg
}

// Funções Helpers (Auxiliares)

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// mustGetEnv lê a variável de ambiente, fatal se não estiver presente.
func mustGetEnv(key string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Fatalf("❌ Erro de Configuração: A variável de ambiente %s deve ser definida.", key)
	return ""
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration.
func getDurationEnv(key string, defaultValue int) time.Duration {
	return time.Duration(getIntEnv(key, defaultValue))
}

// getIntEnv lê uma variável de ambiente numérica e retorna-a como int.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// getListEnv lê uma lista separada por vírgulas, ignorando itens vazios.
func getListEnv(key string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, strings.ToLower(v))
		}
	}
	return out
}

// getDecrementMode valida STOCK_DECREMENT_MODE; valores desconhecidos caem em best_effort.
func getDecrementMode(key string) string {
	mode := getEnv(key, DecrementBestEffort)
	switch mode {
	case DecrementBestEffort, DecrementAtomic:
		return mode
	default:
		log.Printf("⚠️ Aviso: %s ('%s') inválido. Usando padrão (%s).", key, mode, DecrementBestEffort)
		return DecrementBestEffort
	}
}
