package naver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/horizon/pkg/config"
	"github.com/wonny/horizon/pkg/logger"
)

func TestNewClient_RateConfig(t *testing.T) {
	c := NewClient(nil, config.NaverConfig{RatePerSec: 2.5}, logger.Nop())
	assert.Equal(t, 2.5, c.ratePerSec)
	assert.InDelta(t, 2.5, float64(c.limiter.Limit()), 1e-9)
}

func TestNewClient_RateConfigDefault(t *testing.T) {
	// 미설정(0 이하)이면 기본 5 req/s
	c := NewClient(nil, config.NaverConfig{}, logger.Nop())
	assert.Equal(t, 5.0, c.ratePerSec)
	assert.InDelta(t, 5.0, float64(c.limiter.Limit()), 1e-9)
}
