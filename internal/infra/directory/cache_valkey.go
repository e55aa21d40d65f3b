package directory

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/prepnest/prepnest/internal/domain/qna"
)

// ValkeyCache stores resolved profiles in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a new cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "profile"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

func (c *ValkeyCache) Get(ctx context.Context, userID int64) (qna.Profile, bool, error) {
	cmd := c.client.B().Get().Key(c.key(userID)).Build()
	payload, err := c.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return qna.Profile{}, false, nil
		}
		return qna.Profile{}, false, err
	}
	var profile qna.Profile
	if err := json.Unmarshal([]byte(payload), &profile); err != nil {
		return qna.Profile{}, false, err
	}
	return profile, true, nil
}

func (c *ValkeyCache) Set(ctx context.Context, profile qna.Profile, ttl time.Duration) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	cmd := c.client.B().Set().Key(c.key(profile.ID)).Value(string(payload)).Ex(ttl).Build()
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) key(userID int64) string {
	return c.prefix + ":" + strconv.FormatInt(userID, 10)
}

var _ ProfileCache = (*ValkeyCache)(nil)
