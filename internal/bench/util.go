package bench

import (
	"math/rand"
	"path/filepath"
	"strconv"
)

func randForSeed(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// CaseSeed - сид экземпляра для i-й конфигурации jobs x machines.
func CaseSeed(base int64, i, jobs, machines int) int64 {
	return base + int64(i)*10_000 + int64(jobs)*100 + int64(machines)
}

func dirOf(path string) string {
	d := filepath.Dir(path)
	if d == "." {
		return ""
	}
	return d
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
