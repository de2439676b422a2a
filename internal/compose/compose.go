// Package compose renders ranked articles into the digest's markdown body.
// Rendering is pure: the same ranked slice and date label always produce
// byte-identical output.
package compose

import (
	"fmt"
	"strings"

	"github.com/sota-ai/sotanews/internal/models"
)

const tagline = "*Your daily dose of cutting-edge AI developments, curated by artificial intelligence*"

// Placeholder pulse counters. These are presentation-only figures carried
// over from the original layout; they are not derived from real data.
const (
	pulseSourcesMonitored = 247
	pulseBreakingNews     = 3
	pulseResearchPapers   = 12
	pulseIndustryUpdates  = 8
)

var trendingTopics = []string{
	"**Multimodal AI** - Major breakthroughs in cross-modal understanding",
	"**Protein Folding** - AI-driven biological discoveries",
	"**Open Source Models** - Democratizing AI access",
	"**Enterprise AI** - Business applications and adoption",
	"**AI Safety** - Responsible development practices",
}

// Render produces the digest body for ranked articles. analyzed is the
// unfiltered count of articles that went through scoring, not just the
// count that survived selection. Fewer than six ranked articles is fine;
// the Highlights and Quick Scan sections shrink to what is available.
func Render(ranked []models.ScoredArticle, dateLabel string, analyzed int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 🚀 SOTA.ai Daily Digest - %s\n\n", dateLabel)
	b.WriteString(tagline)
	b.WriteString("\n\n---\n")

	if len(ranked) > 0 {
		b.WriteString("\n## 📈 Today's Highlights\n")
		for _, article := range highlights(ranked) {
			writeHighlight(&b, article)
		}
	}

	if scan := quickScan(ranked); len(scan) > 0 {
		b.WriteString("\n## 🔍 Quick Scan\n\n")
		for _, article := range scan {
			fmt.Fprintf(&b, "• **%s** - %s ([link](%s))\n", article.Title, article.Source, article.URL)
		}
	}

	b.WriteString("\n## 📊 Today's AI Pulse\n\n")
	fmt.Fprintf(&b, "- **Articles Analyzed:** %d\n", analyzed)
	fmt.Fprintf(&b, "- **Featured Articles:** %d\n", len(ranked))
	fmt.Fprintf(&b, "- **Sources Monitored:** %d\n", pulseSourcesMonitored)
	fmt.Fprintf(&b, "- **Breaking News Alerts:** %d\n", pulseBreakingNews)
	fmt.Fprintf(&b, "- **Research Papers:** %d\n", pulseResearchPapers)
	fmt.Fprintf(&b, "- **Industry Updates:** %d\n", pulseIndustryUpdates)

	b.WriteString("\n## 🎯 Trending Topics\n\n")
	for i, topic := range trendingTopics {
		fmt.Fprintf(&b, "%d. %s\n", i+1, topic)
	}

	b.WriteString(`
---

## 💡 Why This Matters

Today's developments showcase the rapid acceleration of AI capabilities across multiple domains. From OpenAI's multimodal advancements to Google's protein folding breakthroughs, we're witnessing unprecedented progress that will reshape industries and scientific research.

The trend toward more capable, accessible AI systems continues to democratize advanced technology while raising important questions about responsible development and deployment.

---

*🤖 This digest was generated by SOTA.ai's advanced curation system, analyzing thousands of sources to bring you the most important AI developments.*

**Stay ahead of the curve** - [Subscribe to our newsletter](https://sota.ai/subscribe) | [Follow us on Twitter](https://twitter.com/sota_ai)
`)

	return b.String()
}

func writeHighlight(b *strings.Builder, article models.ScoredArticle) {
	fmt.Fprintf(b, "\n### %s %s\n\n", tierGlyph(article.Tier), article.Title)
	fmt.Fprintf(b, "**Source:** %s | **AI Score:** %.1f/10\n\n", article.Source, article.Score*10)

	if article.Summary != "" {
		b.WriteString(article.Summary)
		b.WriteString("\n\n")
	}

	if len(article.Insights) > 0 {
		b.WriteString("**Key Insights:**\n")
		for _, insight := range article.Insights {
			fmt.Fprintf(b, "- %s\n", insight)
		}
		b.WriteString("\n")
	}

	if len(article.Tags) > 0 {
		fmt.Fprintf(b, "**Tags:** %s\n", strings.Join(article.Tags, ", "))
	}
	fmt.Fprintf(b, "**[Read More →](%s)**\n\n---\n", article.URL)
}

func tierGlyph(tier models.Tier) string {
	switch tier {
	case models.TierHigh:
		return "🔥"
	case models.TierMedium:
		return "⭐"
	default:
		return "📝"
	}
}

func highlights(ranked []models.ScoredArticle) []models.ScoredArticle {
	if len(ranked) > 3 {
		return ranked[:3]
	}
	return ranked
}

func quickScan(ranked []models.ScoredArticle) []models.ScoredArticle {
	if len(ranked) <= 3 {
		return nil
	}
	if len(ranked) > 6 {
		return ranked[3:6]
	}
	return ranked[3:]
}

// Title builds the digest title for a date label.
func Title(dateLabel string) string {
	return "SOTA.ai Daily Digest - " + dateLabel
}
