package internal

import (
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestIsNil(t *testing.T) {
	var client *redis.Client
	var universal redis.UniversalClient = client

	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"Nil", nil, true},
		{"TypedNilPointer", universal, true},
		{"NilMap", map[string]int(nil), true},
		{"Value", 42, false},
		{"Pointer", redis.NewClient(&redis.Options{}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNil(tt.in); got != tt.want {
				t.Errorf("IsNil(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
