package config

import (
	"testing"
	"time"
)

func TestLoadRulesConfig_Defaults(t *testing.T) {
	lim := LoadRulesConfig()
	if lim.MaxConsecutiveNights != 5 || lim.MonthlyCap != 5 {
		t.Fatalf("expected 5/5 caps, got %d/%d", lim.MaxConsecutiveNights, lim.MonthlyCap)
	}
	if lim.RecentHorizonWeeks != 6 || lim.DefaultHorizonWeeks != 8 {
		t.Fatalf("expected 6/8 week horizons, got %d/%d", lim.RecentHorizonWeeks, lim.DefaultHorizonWeeks)
	}
	if !lim.NameFallback {
		t.Fatal("expected name fallback on by default")
	}
}

func TestLoadRulesConfig_Overrides(t *testing.T) {
	t.Setenv("RULES_MONTHLY_CAP", "7")
	t.Setenv("RULES_NAME_FALLBACK", "off")
	t.Setenv("RULES_MAX_CONSECUTIVE_NIGHTS", "0")
	t.Setenv("RULES_HOLIDAY_DECISION_DAYS", "90")
	lim := LoadRulesConfig()
	if lim.MonthlyCap != 7 {
		t.Fatalf("expected monthly cap 7, got %d", lim.MonthlyCap)
	}
	if lim.NameFallback {
		t.Fatal("expected name fallback disabled")
	}
	if lim.MaxConsecutiveNights != 5 {
		t.Fatalf("expected invalid cap to fall back to 5, got %d", lim.MaxConsecutiveNights)
	}
	if lim.HolidayDecisionDays != lim.HolidayOpenDays {
		t.Fatalf("decision date may not precede the open date, got %d > %d", lim.HolidayDecisionDays, lim.HolidayOpenDays)
	}
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Fatalf("expected capacity clamped to 1, got %d", cfg.Capacity)
	}
	if cfg.TTL != 10*time.Second {
		t.Fatalf("expected ttl raised to 5 intervals, got %s", cfg.TTL)
	}
	if !cfg.PerRoute || cfg.Prefix != "suite:rl" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head, post")
	cfg := LoadCacheConfig()
	if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] || cfg.Methods["POST"] {
		t.Fatalf("expected only safe methods, got %v", cfg.Methods)
	}
	if cfg.Prefix != "suite:cache" || cfg.TTL != 5*time.Minute {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadRedisConfig_HostPort(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")
	rc := LoadRedisConfig()
	if rc.Addr != "cache:6380" || rc.DB != 2 {
		t.Fatalf("unexpected redis config %+v", rc)
	}
}
