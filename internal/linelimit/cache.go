// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package linelimit

import (
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of results an engine keeps.
const DefaultCacheSize = 512

type cacheKey struct {
	hash     uint64
	length   int
	language string
	config   Config
}

func newCacheKey(content, language string, cfg Config) cacheKey {
	return cacheKey{
		hash:     xxhash.Sum64String(content),
		length:   len(content),
		language: language,
		config:   cfg,
	}
}

// resultCache is an LRU of results. Stored and returned results are deep
// copies, so callers may modify what they receive.
type resultCache struct {
	lru *lru.Cache[cacheKey, *Result]
}

func newResultCache(size int) (*resultCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[cacheKey, *Result](size)
	if err != nil {
		return nil, err
	}
	return &resultCache{lru: c}, nil
}

func (c *resultCache) get(key cacheKey) (*Result, bool) {
	r, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return r.clone(), true
}

func (c *resultCache) put(key cacheKey, r *Result) {
	c.lru.Add(key, r.clone())
}

func (c *resultCache) len() int {
	return c.lru.Len()
}

func (c *resultCache) purge() {
	c.lru.Purge()
}
