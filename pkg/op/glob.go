package op

import (
	"github.com/gobwas/glob"
	lru "github.com/hashicorp/golang-lru"
)

// Compiled glob patterns are cached, client patterns (redirect uris,
// post logout uris, spontaneous scopes) repeat on every request.
var globCache *lru.ARCCache

func init() {
	var err error
	globCache, err = lru.NewARC(10000)
	if err != nil {
		panic(err)
	}
}

type globCacheEntry struct {
	compiled glob.Glob
	err      error
}

func CompileGlob(s string) (glob.Glob, error) {
	cachedRaw, ok := globCache.Get(s)
	if ok {
		cached := cachedRaw.(globCacheEntry)
		return cached.compiled, cached.err
	}
	compiled, err := glob.Compile(s)
	globCache.Add(s, globCacheEntry{compiled: compiled, err: err})
	return compiled, err
}

// MatchAnyGlob reports whether s matches one of the patterns.
// Invalid patterns never match.
func MatchAnyGlob(s string, patterns []string) bool {
	for _, pattern := range patterns {
		g, err := CompileGlob(pattern)
		if err != nil {
			continue
		}
		if g.Match(s) {
			return true
		}
	}
	return false
}
