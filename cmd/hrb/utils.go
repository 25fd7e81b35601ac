// utils.go
package main

import (
	"os"
	"path/filepath"
)

// -- Utilities --

func resolveDBPath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv("HERB_DB_PATH"); env != "" {
		return env
	}
	candidates := []string{
		"./results.db",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".hrb", "results.db"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return "./results.db"
}

func levenshtein(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	n, m := len(r1), len(r2)
	if n > m {
		r1, r2 = r2, r1
		n, m = m, n
	}
	current := make([]int, n+1)
	for i := 0; i <= n; i++ {
		current[i] = i
	}
	for j := 1; j <= m; j++ {
		previous := current[0]
		current[0] = j
		for i := 1; i <= n; i++ {
			temp := current[i]
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			current[i] = min(min(current[i-1]+1, current[i]+1), previous+cost)
			previous = temp
		}
	}
	return current[n]
}

func suggestCommand(cmd string) string {
	commands := []string{"analyze", "rewrite", "ssa", "index", "stats", "explain"}
	best := ""
	bestDist := 3 // only suggest close matches
	for _, c := range commands {
		if d := levenshtein(cmd, c); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}
