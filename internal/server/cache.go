package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/alfredjeanlab/casegraph/internal/timeline"
	lru "github.com/hashicorp/golang-lru/v2"
)

// graphView is a timeline graph response with its derived render model and
// layout. Values in the cache are shared and must not be modified.
type graphView struct {
	Response    *model.TimelineGraphResponse
	RenderModel timeline.RenderModel
	Layout      timeline.Layout
}

// layoutCache memoizes layouts by the content of the response they were
// built from. Layout is pure, so equal responses always share an entry.
type layoutCache struct {
	entries *lru.Cache[string, *graphView]
}

func newLayoutCache(size int) (*layoutCache, error) {
	c, err := lru.New[string, *graphView](size)
	if err != nil {
		return nil, fmt.Errorf("creating layout cache: %w", err)
	}
	return &layoutCache{entries: c}, nil
}

// build returns the cached view for resp, computing and storing it on a miss.
func (c *layoutCache) build(resp *model.TimelineGraphResponse) (*graphView, error) {
	key, err := fingerprint(resp)
	if err != nil {
		return nil, err
	}
	if gv, ok := c.entries.Get(key); ok {
		return gv, nil
	}
	rm := timeline.BuildRenderModel(resp)
	gv := &graphView{
		Response:    resp,
		RenderModel: rm,
		Layout:      timeline.BuildLayout(rm, resp),
	}
	c.entries.Add(key, gv)
	return gv, nil
}

func (c *layoutCache) len() int { return c.entries.Len() }

// fingerprint hashes the canonical JSON encoding of a response.
func fingerprint(resp *model.TimelineGraphResponse) (string, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("fingerprinting graph: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
