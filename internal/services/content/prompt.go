package content

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// DefaultBasePrompt is used when a job carries no prompt override.
const DefaultBasePrompt = "A vibrant promotional image showcasing the business and its products"

// Independent phrase pools composed into every augmented prompt. Pools are
// deliberately disjoint so one draw per pool cannot produce the same
// combination twice in close succession once the uniqueness token is added.
var (
	scenePool = []string{
		"a bustling storefront scene",
		"a close-up product display",
		"a behind-the-scenes moment",
		"a customer enjoying the service",
		"a flat-lay arrangement",
		"a lifestyle setting",
	}
	interactionPool = []string{
		"with hands presenting the product",
		"with people engaged in conversation",
		"with a craftsman at work",
		"with items being arranged",
		"with a warm exchange at the counter",
	}
	settingPool = []string{
		"in a modern urban environment",
		"in a cozy interior",
		"against a clean studio backdrop",
		"in natural outdoor surroundings",
		"in a stylish workspace",
	}
	compositionPool = []string{
		"rule-of-thirds composition",
		"centered symmetrical framing",
		"shallow depth of field",
		"wide establishing shot",
		"overhead perspective",
	}
)

// styleSet groups lighting, palette, and detail phrases that stay
// thematically consistent with one visual motif.
type styleSet struct {
	keywords []string
	lighting []string
	palette  []string
	details  []string
}

var styleSets = []styleSet{
	{
		keywords: []string{"neon", "night", "cyber", "glow"},
		lighting: []string{"neon glow lighting", "moody low-key lighting", "vivid backlit accents"},
		palette:  []string{"electric blues and magentas", "saturated jewel tones", "high-contrast dark palette"},
		details:  []string{"reflective surfaces", "light trails", "urban texture details"},
	},
	{
		keywords: []string{"vintage", "retro", "classic", "rustic"},
		lighting: []string{"soft golden-hour lighting", "warm tungsten glow", "diffused window light"},
		palette:  []string{"muted earth tones", "faded film colors", "cream and sepia accents"},
		details:  []string{"aged textures", "handcrafted props", "grain and patina details"},
	},
	{
		keywords: []string{"minimal", "clean", "modern", "simple"},
		lighting: []string{"bright even lighting", "crisp daylight", "soft shadowless lighting"},
		palette:  []string{"monochrome with one accent color", "soft neutral palette", "white-on-white tones"},
		details:  []string{"negative space", "geometric simplicity", "subtle material textures"},
	},
}

// defaultStyle is applied when no motif keyword matches the base prompt.
var defaultStyle = styleSet{
	lighting: []string{"natural daylight", "warm ambient lighting", "bright studio lighting", "soft morning light"},
	palette:  []string{"fresh vibrant colors", "balanced complementary tones", "rich warm palette", "cool contemporary tones"},
	details:  []string{"crisp fine details", "appealing texture contrast", "professional product styling", "inviting atmosphere"},
}

// detectStyle returns the style set whose motif keywords appear in the base
// prompt, or the neutral default.
func detectStyle(basePrompt string) styleSet {
	lower := strings.ToLower(basePrompt)
	for _, set := range styleSets {
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				return set
			}
		}
	}
	return defaultStyle
}

func pick(rnd *rand.Rand, pool []string) string {
	return pool[rnd.Intn(len(pool))]
}

// AugmentPrompt composes a diversified prompt from the base prompt plus one
// draw from each independent pool and a uniqueness token, so repeated runs
// with the same base prompt do not collide on generated output. The random
// source is explicit so tests can inject a deterministic one.
func AugmentPrompt(basePrompt string, now time.Time, rnd *rand.Rand) string {
	if basePrompt == "" {
		basePrompt = DefaultBasePrompt
	}

	style := detectStyle(basePrompt)
	token := fmt.Sprintf("ref-%d-%04d", now.Unix(), rnd.Intn(10000))

	parts := []string{
		basePrompt,
		pick(rnd, scenePool),
		pick(rnd, interactionPool),
		pick(rnd, settingPool),
		pick(rnd, compositionPool),
		pick(rnd, style.lighting),
		pick(rnd, style.palette),
		pick(rnd, style.details),
		token,
	}

	return strings.Join(parts, ", ")
}
