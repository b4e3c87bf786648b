package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// ChatContextRepository keeps the post-completion chat context (the session's
// concatenated artifacts) in memory with a TTL, so the document is not
// re-assembled from storage on every message.
type ChatContextRepository struct {
	cache *cache.Cache
}

func NewChatContextRepository() *ChatContextRepository {
	// Default expiration 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ChatContextRepository{
		cache: c,
	}
}

func (r *ChatContextRepository) Save(email, contextDoc string) {
	r.cache.Set(email, contextDoc, cache.DefaultExpiration)
}

func (r *ChatContextRepository) Get(email string) (string, bool) {
	if x, found := r.cache.Get(email); found {
		return x.(string), true
	}
	return "", false
}

func (r *ChatContextRepository) Delete(email string) {
	r.cache.Delete(email)
}
