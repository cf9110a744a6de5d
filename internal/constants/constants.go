package constants

import "time"

var CacheKeys = struct {
	CreaturePrefix string
	MovePrefix     string
}{
	CreaturePrefix: "creature:",
	MovePrefix:     "move:",
}

var APIConfig = struct {
	PokeAPIBaseURL string
	RequestTimeout time.Duration
	UserAgent      string
}{
	PokeAPIBaseURL: "https://pokeapi.co/api/v2",
	RequestTimeout: 10 * time.Second, // 호출 1회당 타임아웃
	UserAgent:      "pokedex-go/1.0",
}

var RetryConfig = struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      float64
}{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    5 * time.Second,
	Jitter:      0.5,
}

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}{
	FailureThreshold: 5,                // 연속 5회 네트워크 실패 시 OPEN
	ResetTimeout:     30 * time.Second, // OPEN 유지 시간
}

var LookupConfig = struct {
	DefaultConcurrency int
	MinConcurrency     int
	MaxConcurrency     int
}{
	DefaultConcurrency: 8,
	MinConcurrency:     1,
	MaxConcurrency:     32,
}

var StoreConfig = struct {
	ConnectTimeout time.Duration
	TableName      string
}{
	ConnectTimeout: 5 * time.Second,
	TableName:      "kv_entries",
}
