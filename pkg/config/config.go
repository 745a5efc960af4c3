package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	DB      DBConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Billing BillingConfig
	Storage StorageConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT (solo verificación; los tokens los emite otro servicio).
type JWTConfig struct {
	Secret string
	Issuer string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BillingConfig ajustes de caja que antes vivían en la pantalla de configuración del POS.
type BillingConfig struct {
	InvoicePrefix     string
	InvoiceStart      int64           // número de la primera factura (1001 -> INV-1001)
	TaxPct            decimal.Decimal // se aplica si la venta no trae tax_total
	MaxDiscountPct    decimal.Decimal // 0 = sin tope porcentual
	PaymentMethods    []string        // medios habilitados en caja
	LowStockThreshold int64
}

// StorageConfig límites de las llamadas a almacenamiento y del barrido de recuperación.
type StorageConfig struct {
	Timeout          time.Duration
	RecoveryInterval time.Duration
	RetryAttempts    int
	RetryBaseDelay   time.Duration
	Backend          string // postgres | memory (demo, sin persistencia)
	CounterBackend   string // postgres | redis; con Backend=memory "postgres" usa el contador en memoria
}

// RedisConfig conexión a Redis (solo si CounterBackend = redis).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig brokers para eventos de factura y alertas de stock. Sin brokers, los
// eventos solo se registran en el log.
type KafkaConfig struct {
	Brokers      []string
	InvoiceTopic string
	AlertTopic   string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, BILLING_TAX_PCT, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	taxPct, err := getDecimal(v, "BILLING_TAX_PCT", "0")
	if err != nil {
		return nil, err
	}
	maxDiscount, err := getDecimal(v, "BILLING_MAX_DISCOUNT_PCT", "0")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "pos-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "pos"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", "pos-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Billing: BillingConfig{
			InvoicePrefix:     getString(v, "BILLING_INVOICE_PREFIX", "INV"),
			InvoiceStart:      int64(getInt(v, "BILLING_INVOICE_START_NUMBER", 1001)),
			TaxPct:            taxPct,
			MaxDiscountPct:    maxDiscount,
			PaymentMethods:    getList(v, "BILLING_PAYMENT_METHODS", []string{"Cash", "Card", "EasyPaisa", "JazzCash"}),
			LowStockThreshold: int64(getInt(v, "BILLING_LOW_STOCK_THRESHOLD", 5)),
		},
		Storage: StorageConfig{
			Timeout:          time.Duration(getInt(v, "STORAGE_TIMEOUT_MS", 3000)) * time.Millisecond,
			RecoveryInterval: time.Duration(getInt(v, "RECOVERY_INTERVAL_SECONDS", 30)) * time.Second,
			RetryAttempts:    getInt(v, "STORAGE_RETRY_ATTEMPTS", 4),
			RetryBaseDelay:   time.Duration(getInt(v, "STORAGE_RETRY_BASE_MS", 100)) * time.Millisecond,
			Backend:          getString(v, "STORAGE_BACKEND", "postgres"),
			CounterBackend:   getString(v, "COUNTER_BACKEND", "postgres"),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", "localhost:6379"),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:      getList(v, "KAFKA_BROKERS", nil),
			InvoiceTopic: getString(v, "KAFKA_INVOICE_TOPIC", "invoice.created"),
			AlertTopic:   getString(v, "KAFKA_ALERT_TOPIC", "stock.alerts"),
		},
	}

	if cfg.Storage.Backend != "postgres" && cfg.Storage.Backend != "memory" {
		return nil, fmt.Errorf("STORAGE_BACKEND inválido: %q", cfg.Storage.Backend)
	}
	if cfg.Storage.CounterBackend != "postgres" && cfg.Storage.CounterBackend != "redis" {
		return nil, fmt.Errorf("COUNTER_BACKEND inválido: %q", cfg.Storage.CounterBackend)
	}
	if cfg.Billing.InvoiceStart <= 0 {
		return nil, fmt.Errorf("BILLING_INVOICE_START_NUMBER debe ser positivo")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getDecimal(v *viper.Viper, key, def string) (decimal.Decimal, error) {
	raw := getString(v, key, def)
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s inválido: %w", key, err)
	}
	return d, nil
}

// getList acepta valores separados por coma ("Cash,Card").
func getList(v *viper.Viper, key string, def []string) []string {
	if !v.IsSet(key) {
		return def
	}
	var out []string
	for _, s := range strings.Split(v.GetString(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
