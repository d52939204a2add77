package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the market simulator.
type Config struct {
	// Market mechanics.
	TicksPerDay int
	PriceDigits int
	CashDigits  int
	NullPrice   int64
	IOC         bool

	// Run control.
	Seed       int64
	Runs       int
	EndDay     int
	EndTick    int
	BurnInTick int

	// Agent population.
	TraderLatency int
	IdleProb      float64
	MakerSpread   int64
	MakerOrders   int
	MakerExpiry   int
	TraderCash    int64
	TraderInv     int64

	// Output.
	OutputDir    string
	LogLevel     string
	Port         int
	ServeResults bool

	// HTTP server behaviour, only used with ServeResults.
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	ticksPerDay, err := getInt("TICKS_PER_DAY", 34200000)
	if err != nil {
		return nil, fmt.Errorf("invalid TICKS_PER_DAY: %w", err)
	}
	if ticksPerDay < 1 {
		return nil, fmt.Errorf("invalid TICKS_PER_DAY: must be positive, got %d", ticksPerDay)
	}

	priceDigits, err := getInt("PRICE_DIGITS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid PRICE_DIGITS: %w", err)
	}

	cashDigits, err := getInt("CASH_DIGITS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid CASH_DIGITS: %w", err)
	}
	if cashDigits > priceDigits {
		return nil, fmt.Errorf("invalid CASH_DIGITS: must not exceed PRICE_DIGITS (%d), got %d", priceDigits, cashDigits)
	}

	nullPrice, err := getInt64("NULL_PRICE", 30000)
	if err != nil {
		return nil, fmt.Errorf("invalid NULL_PRICE: %w", err)
	}
	if nullPrice < 1 {
		return nil, fmt.Errorf("invalid NULL_PRICE: must be positive, got %d", nullPrice)
	}

	ioc, err := getBool("IOC", true)
	if err != nil {
		return nil, fmt.Errorf("invalid IOC: %w", err)
	}

	seed, err := getInt64("SEED", 6548412)
	if err != nil {
		return nil, fmt.Errorf("invalid SEED: %w", err)
	}

	runs, err := getInt("RUNS", 1)
	if err != nil {
		return nil, fmt.Errorf("invalid RUNS: %w", err)
	}
	if runs < 1 {
		return nil, fmt.Errorf("invalid RUNS: must be positive, got %d", runs)
	}

	endDay, err := getInt("END_DAY", 1)
	if err != nil {
		return nil, fmt.Errorf("invalid END_DAY: %w", err)
	}

	endTick, err := getInt("END_TICK", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid END_TICK: %w", err)
	}

	burnInTick, err := getInt("BURN_IN_TICK", 3600000)
	if err != nil {
		return nil, fmt.Errorf("invalid BURN_IN_TICK: %w", err)
	}

	traderLatency, err := getInt("TRADER_LATENCY", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid TRADER_LATENCY: %w", err)
	}
	if traderLatency < 0 {
		return nil, fmt.Errorf("invalid TRADER_LATENCY: must not be negative, got %d", traderLatency)
	}

	idleProb, err := getFloat("IDLE_PROB", 0.9847)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_PROB: %w", err)
	}
	if idleProb <= 0 || idleProb >= 1 {
		return nil, fmt.Errorf("invalid IDLE_PROB: must be in (0, 1), got %g", idleProb)
	}

	makerSpread, err := getInt64("MAKER_SPREAD", 50)
	if err != nil {
		return nil, fmt.Errorf("invalid MAKER_SPREAD: %w", err)
	}

	makerOrders, err := getInt("MAKER_ORDERS", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid MAKER_ORDERS: %w", err)
	}
	if makerOrders < 1 {
		return nil, fmt.Errorf("invalid MAKER_ORDERS: must be positive, got %d", makerOrders)
	}

	makerExpiry, err := getInt("MAKER_EXPIRY", 300000)
	if err != nil {
		return nil, fmt.Errorf("invalid MAKER_EXPIRY: %w", err)
	}
	if makerExpiry < 1 {
		return nil, fmt.Errorf("invalid MAKER_EXPIRY: must be positive, got %d", makerExpiry)
	}

	traderCash, err := getInt64("TRADER_CASH", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid TRADER_CASH: %w", err)
	}

	traderInv, err := getInt64("TRADER_INVENTORY", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid TRADER_INVENTORY: %w", err)
	}

	outputDir := getStr("OUTPUT_DIR", "")

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	serveResults, err := getBool("SERVE_RESULTS", false)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVE_RESULTS: %w", err)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		TicksPerDay:   ticksPerDay,
		PriceDigits:   priceDigits,
		CashDigits:    cashDigits,
		NullPrice:     nullPrice,
		IOC:           ioc,
		Seed:          seed,
		Runs:          runs,
		EndDay:        endDay,
		EndTick:       endTick,
		BurnInTick:    burnInTick,
		TraderLatency: traderLatency,
		IdleProb:      idleProb,
		MakerSpread:   makerSpread,
		MakerOrders:   makerOrders,
		MakerExpiry:   makerExpiry,
		TraderCash:    traderCash,
		TraderInv:     traderInv,
		OutputDir:     outputDir,
		LogLevel:      logLevel,
		Port:          port,
		ServeResults:  serveResults,

		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getInt64(key string, defaultVal int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseBool(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
