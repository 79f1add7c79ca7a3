package generation

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"

	"github.com/ternarybob/cadence/internal/common"
)

// BuildImageURLs derives render URLs from the augmented prompt. The renderer
// produces a distinct image per (prompt, seed) pair, so seeding from the
// prompt hash keeps a run's images unique while staying reproducible.
func BuildImageURLs(cfg *common.GenerationConfig, prompt string, count int) []string {
	if count <= 0 {
		return nil
	}
	base := strings.TrimSuffix(cfg.ImageBaseURL, "/")
	if base == "" {
		return nil
	}

	width, height := cfg.ImageWidth, cfg.ImageHeight
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 1024
	}

	h := fnv.New32a()
	h.Write([]byte(prompt))
	seed := h.Sum32()

	urls := make([]string, 0, count)
	escaped := url.PathEscape(prompt)
	for i := 0; i < count; i++ {
		urls = append(urls, fmt.Sprintf("%s/%s?width=%d&height=%d&seed=%d&nologo=true",
			base, escaped, width, height, seed+uint32(i)))
	}
	return urls
}
