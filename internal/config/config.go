package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/veritaslab/veritas/internal/domain"
)

// Load reads the .env file specified by VERITAS_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("VERITAS_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// APIKeys returns the comma-separated bearer keys accepted on /v1 routes.
// An empty list disables authentication; meant for local development only.
func APIKeys() []string {
	raw := os.Getenv("API_KEYS")
	if raw == "" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// Thresholds returns the classification policy, starting from the engine
// defaults and applying any env overrides. Out-of-range overrides are
// ignored rather than clamped.
func Thresholds() domain.Thresholds {
	th := domain.DefaultThresholds()
	if v, ok := envUnitFloat("CORROBORATION_MAX_CONTRADICTION"); ok {
		th.CorroborationMaxContradiction = v
	}
	if v, ok := envUnitFloat("DISPUTE_MIN_CONTRADICTION"); ok {
		th.DisputeMinContradiction = v
	}
	if v, ok := envUnitFloat("ARCHETYPAL_MIN_INDEPENDENCE"); ok {
		th.ArchetypalMinIndependence = v
	}
	if v, ok := envUnitFloat("LOW_INDEPENDENCE"); ok {
		th.LowIndependence = v
	}
	if n, err := strconv.Atoi(os.Getenv("ARCHETYPAL_MIN_SOURCES")); err == nil && n >= 2 {
		th.ArchetypalMinSources = n
	}
	return th
}

// NumericDivergenceLimit returns the relative spread at which numeric
// contradiction saturates. Defaults to 0.5 (values 50% apart are maximally
// contradictory).
func NumericDivergenceLimit() float64 {
	v, err := strconv.ParseFloat(os.Getenv("NUMERIC_DIVERGENCE_LIMIT"), 64)
	if err != nil || v <= 0 {
		return 0.5
	}
	return v
}

// ConsensusCacheTTL returns how long a consensus snapshot may be served
// between ingestion writes. Defaults to 500ms.
func ConsensusCacheTTL() time.Duration {
	ms, err := strconv.Atoi(os.Getenv("CONSENSUS_CACHE_TTL_MS"))
	if err != nil || ms <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

func envUnitFloat(name string) (float64, bool) {
	v, err := strconv.ParseFloat(os.Getenv(name), 64)
	if err != nil || v < 0 || v > 1 {
		return 0, false
	}
	return v, true
}
