package barcache

// CacheStats is a read-only snapshot of cache state for observability
type CacheStats struct {
	EntryCount int                    `json:"entry_count"`
	TotalBars  int                    `json:"total_bars"`
	TotalBytes int64                  `json:"total_bytes"`
	Hits       int64                  `json:"hits"`
	Misses     int64                  `json:"misses"`
	PerMarket  map[string]MarketStats `json:"per_market"`
}

// MarketStats is the per-market breakdown
type MarketStats struct {
	Entries int   `json:"entries"`
	Bars    int   `json:"bars"`
	Bytes   int64 `json:"bytes"`
}

// 바 하나의 근사 메모리 크기 (time.Time + float64 x5 + int64)
const approxBarBytes = 72

// Stats returns a snapshot of cache statistics.
// 읽기 전용, 부수효과 없음
func (m *Manager) Stats() CacheStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := CacheStats{
		EntryCount: len(m.entries),
		Hits:       m.hits.Load(),
		Misses:     m.misses.Load(),
		PerMarket:  make(map[string]MarketStats),
	}

	for k, e := range m.entries {
		e.mu.Lock()
		bars := e.series.Len()
		e.mu.Unlock()

		bytes := int64(bars) * approxBarBytes
		stats.TotalBars += bars
		stats.TotalBytes += bytes

		ms := stats.PerMarket[k.market]
		ms.Entries++
		ms.Bars += bars
		ms.Bytes += bytes
		stats.PerMarket[k.market] = ms
	}

	return stats
}
