package crawl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zaynkorai/gemini-deepcrawl-research/logging"
	"github.com/zaynkorai/gemini-deepcrawl-research/metrics"
)

const cacheKeyPrefix = "crawl:v1:"

// CachedScraper keeps successful scrapes in redis. Failures are never
// cached, and redis errors degrade to an uncached scrape.
type CachedScraper struct {
	next   Scraper
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedScraper(next Scraper, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedScraper {
	return &CachedScraper{next: next, rdb: rdb, ttl: ttl, logger: logging.OrNop(logger)}
}

func (c *CachedScraper) Scrape(ctx context.Context, url string) (Result, error) {
	key := CacheKey(url)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached Result
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			metrics.CrawlRequests.WithLabelValues(metrics.CrawlCached).Inc()
			return cached, nil
		}
		c.logger.Warn("dropping undecodable crawl cache entry", zap.String("url", url))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("crawl cache read failed", zap.String("url", url), zap.Error(err))
	}

	res, err := c.next.Scrape(ctx, url)
	if err != nil || !res.Success || res.Markdown == "" {
		return res, err
	}

	data, err := json.Marshal(res)
	if err == nil {
		err = c.rdb.Set(ctx, key, data, c.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("crawl cache write failed", zap.String("url", url), zap.Error(err))
	}
	return res, nil
}

// CacheKey is the redis key a URL's scrape is stored under.
func CacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
