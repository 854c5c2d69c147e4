package shared

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"classbook/shared/cache"
	"classbook/shared/dto"

	"github.com/rs/zerolog/log"
)

// BuildCacheKey joins the prefix and its parts into a colon-separated key.
func BuildCacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}

// BuildCacheKeyWithQuery derives a stable key for a list query by hashing the
// pagination params and filter group.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	payload, err := json.Marshal(struct {
		Params dto.QueryParams `json:"params"`
		Filter dto.FilterGroup `json:"filter"`
	}{Params: params, Filter: filter})
	if err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to marshal cache key query")

		return BuildCacheKey(prefix, "all")
	}

	sum := sha256.Sum256(payload)

	return BuildCacheKey(prefix, hex.EncodeToString(sum[:8]))
}

// InvalidateCaches clears every key under the prefix. Failures are logged and
// swallowed so a cache hiccup never fails the write that triggered it.
func InvalidateCaches(ctx context.Context, c cache.RedisCache, prefix string) {
	if err := c.Clear(ctx, fmt.Sprintf("%s:*", prefix)); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}
