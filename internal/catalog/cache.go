package catalog

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/mpetrov/screencast/internal/models"
)

// PageCache holds recently served listing pages. Any catalog write purges it
// wholesale.
type PageCache struct {
	pages *lru.Cache
}

func NewPageCache(size int) (*PageCache, error) {
	pages, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &PageCache{pages: pages}, nil
}

func (c *PageCache) Get(key string) (*models.VideoPage, bool) {
	value, ok := c.pages.Get(key)
	if !ok {
		return nil, false
	}
	page, ok := value.(*models.VideoPage)
	return page, ok
}

func (c *PageCache) Add(key string, page *models.VideoPage) {
	c.pages.Add(key, page)
}

func (c *PageCache) Purge() {
	c.pages.Purge()
}
