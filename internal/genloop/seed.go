package genloop

import (
	"fmt"
	"hash/fnv"
)

// Seed derives the generation seed for one attempt: the low 31 bits of an
// FNV-1a hash over the stable content key, stage name, and attempt index.
// Reproducible for identical inputs, distinct across attempts and stages.
func Seed(contentKey, stage string, attempt int) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%d", contentKey, stage, attempt)
	return int64(h.Sum64() & 0x7FFFFFFF)
}
