package clickhouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  ClientConfig
		want string
	}{
		{
			name: "basic",
			cfg:  ClientConfig{Host: "localhost", Port: 9000, Database: "brain", User: "u", Password: "p"},
			want: "clickhouse://u:p@localhost:9000/brain",
		},
		{
			name: "timeouts",
			cfg: ClientConfig{
				Host: "ch", Port: 9000, Database: "brain", User: "u", Password: "p",
				DialTimeout: 5 * time.Second, ReadTimeout: time.Minute, MaxExecTime: 30 * time.Second,
			},
			want: "clickhouse://u:p@ch:9000/brain?dial_timeout=5s&read_timeout=1m0s&max_execution_time=30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildDSN(tt.cfg))
		})
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient()
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	cfg := ClientConfig{DialTimeout: 5 * time.Second}
	for _, opt := range []ClientOption{
		WithHost("ch"),
		WithTimeouts(0, time.Minute),
		WithMaxExecutionTime(2 * time.Minute),
	} {
		opt(&cfg)
	}

	assert.Equal(t, "ch", cfg.Host)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout, "zero keeps the default")
	assert.Equal(t, time.Minute, cfg.ReadTimeout)
	assert.Equal(t, "clickhouse://:@ch:0/?dial_timeout=5s&read_timeout=1m0s&max_execution_time=120", buildDSN(cfg))
}
