package content

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/cadence/internal/models"
)

// builtinFallbackImages is the last-resort stock pool when neither a
// fallback directory nor an explicit URL list is configured.
var builtinFallbackImages = []string{
	"https://images.unsplash.com/photo-1441986300917-64674bd600d8",
	"https://images.unsplash.com/photo-1556742049-0cfed4f6a45d",
	"https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d",
	"https://images.unsplash.com/photo-1556745757-8d76bdb6984b",
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// fallbackPool assembles the candidate stock images: directory listing
// first, then explicit URL list, then the built-in set.
func fallbackPool(dir string, urls []string) []string {
	if dir != "" {
		if entries, err := os.ReadDir(dir); err == nil {
			var pool []string
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
					pool = append(pool, "file://"+filepath.Join(dir, entry.Name()))
				}
			}
			if len(pool) > 0 {
				return pool
			}
		}
	}
	if len(urls) > 0 {
		return urls
	}
	return builtinFallbackImages
}

// selectFallbackImage picks one stock image, favoring entries absent from
// the recency buffer. It returns the publish URL with a cache-busting query
// parameter appended, plus the bare pool URL for recency tracking.
func selectFallbackImage(pool []string, recent []string, now time.Time, rnd *rand.Rand) (publishURL, poolURL string) {
	if len(pool) == 0 {
		return "", ""
	}

	fresh := make([]string, 0, len(pool))
	for _, url := range pool {
		if !models.ContainsRecent(recent, url) {
			fresh = append(fresh, url)
		}
	}
	if len(fresh) == 0 {
		fresh = pool
	}

	chosen := fresh[rnd.Intn(len(fresh))]

	sep := "?"
	if strings.Contains(chosen, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%scb=%d", chosen, sep, now.UnixNano()), chosen
}
