package sources

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

func generateHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)
}

// aiKeywords gate the broad firehose sources (HackerNews) down to
// AI-related stories. Dedicated AI feeds skip this filter.
var aiKeywords = []string{
	"ai", "artificial intelligence", "machine learning", "ml",
	"deep learning", "neural network", "gpt", "llm", "nlp",
	"computer vision", "robotics", "chatbot", "openai",
	"google ai", "deepmind", "anthropic", "claude",
}

func isAIRelated(text string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range aiKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
