package testutil

import (
	"fmt"
	"math/rand"
)

// TestDataGenerator produces reproducible fixture layouts.
type TestDataGenerator struct {
	rand *rand.Rand
}

// NewTestDataGenerator creates a generator with a seeded random source.
func NewTestDataGenerator(seed int64) *TestDataGenerator {
	return &TestDataGenerator{rand: rand.New(rand.NewSource(seed))}
}

// GenerateTree returns a layout of files spread over depth levels with
// fanout subdirectories and filesPerDir files in each directory.
func (g *TestDataGenerator) GenerateTree(depth, fanout, filesPerDir int) map[string]string {
	files := map[string]string{}
	g.fill(files, "", depth, fanout, filesPerDir)
	return files
}

func (g *TestDataGenerator) fill(files map[string]string, prefix string, depth, fanout, filesPerDir int) {
	for i := 0; i < filesPerDir; i++ {
		files[fmt.Sprintf("%sfile-%03d.txt", prefix, i)] = g.content(16 + g.rand.Intn(512))
	}
	if depth == 0 {
		return
	}
	for i := 0; i < fanout; i++ {
		g.fill(files, fmt.Sprintf("%sdir-%02d/", prefix, i), depth-1, fanout, filesPerDir)
	}
}

func (g *TestDataGenerator) content(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789\n"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[g.rand.Intn(len(alphabet))]
	}
	return string(b)
}
