package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	LogFile      string
	MaxUploadMB  int

	// Warehouses preferred for fulfilment, in order. Codes not listed
	// here come after, sorted alphabetically.
	WarehousePriority []string

	// Default policy for order lines carrying exactly two numbers:
	// "qty-first-price-last" or "confirm".
	TwoNumberPolicy string

	RankThreshold float64
	RankLimit     int
}

func Load() Config {
	port, _ := strconv.Atoi(getenv("PORT", "8083"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "256"))
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	threshold, _ := strconv.ParseFloat(getenv("RANK_THRESHOLD", "80"), 64)
	limit, _ := strconv.Atoi(getenv("RANK_LIMIT", "30"))

	priority := strings.Split(getenv("WAREHOUSE_PRIORITY", "BWD_MAIN,FBD_MAIN,CHN_CENTRL,KOL_MAIN"), ",")
	for i := range priority {
		priority[i] = strings.ToUpper(strings.TrimSpace(priority[i]))
	}

	return Config{
		Host:              getenv("HOST", "127.0.0.1"),
		Port:              port,
		AllowOrigins:      origins,
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFile:           getenv("LOG_FILE", "logs/po-service.log"),
		MaxUploadMB:       mb,
		WarehousePriority: priority,
		TwoNumberPolicy:   getenv("TWO_NUMBER_POLICY", "qty-first-price-last"),
		RankThreshold:     threshold,
		RankLimit:         limit,
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
