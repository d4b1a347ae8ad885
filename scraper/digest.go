package scraper

import (
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	readability "github.com/go-shiori/go-readability"

	"github.com/use-agent/sitescan/models"
)

// mdConverter is goroutine-safe and shared by all scrapes.
var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(
			table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
		),
	),
)

// minDigestText is the shortest main-content text accepted from readability.
const minDigestText = 50

// buildDigest summarises the main content of a page. Any failure yields an
// empty digest.
func buildDigest(pageHTML string, pageURL *url.URL) models.Digest {
	if pageURL == nil {
		return models.Digest{}
	}
	article, err := readability.FromReader(strings.NewReader(pageHTML), pageURL)
	if err != nil {
		slog.Debug("readability failed", "url", pageURL.String(), "error", err)
		return models.Digest{}
	}

	d := models.Digest{
		SiteName: strings.TrimSpace(article.SiteName),
		Excerpt:  strings.TrimSpace(article.Excerpt),
	}
	if utf8.RuneCountInString(strings.TrimSpace(article.TextContent)) < minDigestText {
		return d
	}

	md, err := mdConverter.ConvertString(article.Content, converter.WithDomain(pageURL.Scheme+"://"+pageURL.Host))
	if err != nil {
		slog.Debug("markdown conversion failed", "url", pageURL.String(), "error", err)
		return d
	}
	d.Markdown = strings.TrimSpace(md)
	d.Tokens = estimateTokens(d.Markdown)
	return d
}

// estimateTokens approximates a model token count as runes / 3.
func estimateTokens(s string) int {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return 0
	}
	return max(1, n/3)
}
