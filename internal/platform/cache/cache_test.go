package cache

import (
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid-redis", "redis://localhost:6379", false},
		{"valid-with-db", "redis://localhost:6379/2", false},
		{"valid-with-auth", "redis://:secret@localhost:6379", false},
		{"empty", "", true},
		{"wrong-scheme", "http://localhost:6379", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetJSON_UnmarshalableValue(t *testing.T) {
	// The marshal error surfaces before any network call is attempted.
	c := &Cache{Client: redis.NewClient(&redis.Options{Addr: "localhost:59999"})}
	t.Cleanup(func() { c.Close() })

	if err := c.SetJSON(t.Context(), "k", make(chan int), 0); err == nil {
		t.Fatal("SetJSON() should fail for a value JSON cannot encode")
	}
}

func TestNew_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	ctx := t.Context()
	_, err := New(ctx, "redis://localhost:59999")
	if err == nil {
		t.Fatal("New() should return error for unreachable host")
	}
}
