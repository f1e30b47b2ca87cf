package worklist

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// LoadPending reads the pending-list file at path (one URL per line,
// blank lines ignored), canonicalizes and de-duplicates the entries
// preserving first occurrence, and drops any URL whose canonical form is
// already in processed. When the surviving list is shorter than what was
// read, the file is rewritten to contain exactly the survivors; an
// unchanged list leaves the file untouched.
//
// The processed set holds canonical URLs, typically collected by
// store.ProcessedURLs from the output tree.
func LoadPending(path string, processed map[string]struct{}) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read pending list: %w", err)
	}

	var total int
	seen := map[string]struct{}{}
	remaining := make([]string, 0, 8)
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		total++
		key := Canonical(line)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := processed[key]; ok {
			log.Info().Str("url", key).Msg("already processed, skipping")
			continue
		}
		remaining = append(remaining, key)
	}

	if len(remaining) < total {
		var sb strings.Builder
		for _, u := range remaining {
			sb.WriteString(u)
			sb.WriteByte('\n')
		}
		if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
			return nil, fmt.Errorf("rewrite pending list: %w", err)
		}
		log.Info().Int("before", total).Int("after", len(remaining)).Str("path", path).
			Msg("pending list rewritten")
	}
	return remaining, nil
}
