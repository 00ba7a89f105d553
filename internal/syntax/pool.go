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

package syntax

import (
	"context"
	"errors"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// DefaultPoolSize is the number of idle parsers a Pool retains.
const DefaultPoolSize = 4

// ErrPoolClosed is returned when parsing through a closed pool.
var ErrPoolClosed = errors.New("parser pool is closed")

// Pool hands out tree-sitter parsers for a single grammar. A parser is not
// safe for concurrent use, so each Parse call borrows one exclusively.
// Parsers beyond the pool size are created on demand and closed on return.
type Pool struct {
	lang    *sitter.Language
	parsers chan *sitter.Parser

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a parser pool for lang holding at most size idle parsers.
func NewPool(lang *sitter.Language, size int) *Pool {
	if size < 1 {
		size = DefaultPoolSize
	}
	return &Pool{
		lang:    lang,
		parsers: make(chan *sitter.Parser, size),
	}
}

// Parse parses src and returns its tree. The caller owns the tree and must
// Close it.
func (p *Pool) Parse(ctx context.Context, src []byte) (*Tree, error) {
	parser, err := p.get()
	if err != nil {
		return nil, err
	}
	defer p.put(parser)

	t, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.New("parser produced no tree")
	}
	return newTree(t, src), nil
}

// Close releases every idle parser. Parsers in flight are closed when they
// are returned. Close is idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for {
		select {
		case parser := <-p.parsers:
			parser.Close()
		default:
			return
		}
	}
}

func (p *Pool) get() (*sitter.Parser, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	select {
	case parser := <-p.parsers:
		return parser, nil
	default:
	}
	parser := sitter.NewParser()
	parser.SetLanguage(p.lang)
	return parser, nil
}

func (p *Pool) put(parser *sitter.Parser) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		parser.Close()
		return
	}
	select {
	case p.parsers <- parser:
	default:
		parser.Close()
	}
}
