package database

import (
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	dsn := DSN("suite", "s3cret", "db", "3306", "guest_suite")
	if !strings.HasPrefix(dsn, "suite:s3cret@tcp(db:3306)/guest_suite?") {
		t.Fatalf("unexpected dsn prefix: %s", dsn)
	}
	for _, want := range []string{"parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("expected %q in %s", want, dsn)
		}
	}
}
