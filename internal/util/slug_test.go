package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"ChatGPT":                "chatgpt",
		"  Stable Diffusion XL ": "stable-diffusion-xl",
		"meta-llama/Llama-3-8B":  "meta-llama-llama-3-8b",
		"--Hello,,, World!!--":   "hello-world",
		"Ünïcode Tool":           "n-code-tool",
		"!!!":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestSlugWithSuffix(t *testing.T) {
	slug := SlugWithSuffix("Midjourney v6")
	assert.Regexp(t, regexp.MustCompile(`^midjourney-v6-[0-9a-f]{6}$`), slug)

	assert.NotEqual(t, SlugWithSuffix("same"), SlugWithSuffix("same"))
	assert.Regexp(t, regexp.MustCompile(`^tool-[0-9a-f]{6}$`), SlugWithSuffix("***"))
}
