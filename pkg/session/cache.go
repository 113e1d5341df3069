package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/pious/pkg/domain"
)

// treeRef identifies the loaded tree file.
type treeRef struct {
	path    string
	size    int64
	modTime time.Time
	partial bool
}

func newTreeRef(path string, info os.FileInfo, partial bool) *treeRef {
	return &treeRef{path: path, size: info.Size(), modTime: info.ModTime(), partial: partial}
}

// key changes whenever the file is rewritten, so a shared store never serves
// facts about an older version of the tree.
func (t *treeRef) key() string {
	return fmt.Sprintf("%s|%d|%d", t.path, t.size, t.modTime.UnixNano())
}

// treeInfoCache memoizes show_tree_info for the loaded tree. LoadTree is its
// only invalidation trigger.
type treeInfoCache struct {
	info  *domain.TreeInfo
	lines []string
}

func (c *treeInfoCache) reset() {
	c.info = nil
	c.lines = nil
}

func (c *treeInfoCache) get() (domain.TreeInfo, bool) {
	if c.info == nil {
		return domain.TreeInfo{}, false
	}
	info := c.info.Clone()
	if c.lines != nil {
		info.Lines = append([]string(nil), c.lines...)
	}
	return info, true
}

func (c *treeInfoCache) set(info domain.TreeInfo) {
	cp := info.Clone()
	c.info = &cp
}

func (c *treeInfoCache) setLines(lines []string) {
	c.lines = append([]string(nil), lines...)
}

func (s *Session) lookupCache(ctx context.Context) (domain.TreeInfo, bool) {
	if info, ok := s.cache.get(); ok {
		s.cacheEvent(ctx, "session", true)
		return info, true
	}
	s.cacheEvent(ctx, "session", false)

	if s.store == nil || s.tree == nil {
		return domain.TreeInfo{}, false
	}
	info, err := s.store.Get(ctx, s.tree.key())
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("tree info store lookup failed", "path", s.tree.path, "err", err)
		}
		s.cacheEvent(ctx, "store", false)
		return domain.TreeInfo{}, false
	}
	s.cacheEvent(ctx, "store", true)
	s.cache.set(info)
	return s.cache.get()
}

func (s *Session) fillCache(ctx context.Context, info domain.TreeInfo) {
	s.cache.set(info)
	if s.store == nil || s.tree == nil {
		return
	}
	if err := s.store.Put(ctx, s.tree.key(), info); err != nil {
		s.logger.Warn("tree info store write failed", "path", s.tree.path, "err", err)
	}
}

func (s *Session) cacheEvent(ctx context.Context, tier string, hit bool) {
	if s.hooks.OnCacheLookup != nil {
		s.hooks.OnCacheLookup(ctx, &domain.CacheEvent{Tier: tier, Hit: hit})
	}
}
