package metrics

import (
	"time"

	"media-catalog/internal/logging"
)

// StatsProvider interface for collecting catalog stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current catalog statistics
type Stats struct {
	TotalImages int
	TotalAudio  int
	TotalVideos int
}

// Collector periodically collects and updates catalog gauges
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	CatalogItems.WithLabelValues("image").Set(float64(stats.TotalImages))
	CatalogItems.WithLabelValues("audio").Set(float64(stats.TotalAudio))
	CatalogItems.WithLabelValues("video").Set(float64(stats.TotalVideos))

	logging.Debug("Metrics collected: images=%d, audio=%d, videos=%d",
		stats.TotalImages, stats.TotalAudio, stats.TotalVideos)
}
