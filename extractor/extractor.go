// Package extractor pulls reusable brand and content assets out of a
// scraped page: colors, logos, text sections, contact details and images.
//
// Each asset is extracted independently. A failing sub-task is recorded in
// the result metadata and never prevents the others from running.
package extractor

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/use-agent/sitescan/htmltext"
	"github.com/use-agent/sitescan/models"
)

var errNoDocument = errors.New("no parsed document")

// Parts lists the extraction sub-tasks in the order they run.
var Parts = []string{
	models.PartColors,
	models.PartLogos,
	models.PartText,
	models.PartContact,
	models.PartImages,
}

// Extract runs every sub-task over the scrape. baseURL resolves relative
// links and defaults to the scrape's final URL; knownPhone is used when the
// page shows no phone number.
//
// A nil scrape yields an empty result whose metadata marks every sub-task as
// not succeeded.
func Extract(scrape *models.ScrapeResult, baseURL, knownPhone string) models.ExtractionResult {
	result := empty()
	if scrape == nil {
		result.Metadata.Errors = nil
		return result
	}

	if baseURL == "" {
		baseURL = scrape.BaseURL()
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}
	doc := scrape.Document()
	plain := htmltext.VisibleText(scrape.RawHTML)
	meta := &result.Metadata

	attempt(meta, models.PartColors, func() error {
		result.Colors = Colors(scrape.RawHTML)
		return nil
	})
	attempt(meta, models.PartLogos, func() error {
		if doc == nil {
			return errNoDocument
		}
		result.Logos = Logos(doc, base)
		return nil
	})
	attempt(meta, models.PartText, func() error {
		result.Text = Text(doc, plain)
		return nil
	})
	attempt(meta, models.PartContact, func() error {
		result.Contact = Contact(doc, scrape, plain, knownPhone)
		return nil
	})
	attempt(meta, models.PartImages, func() error {
		if doc == nil {
			return errNoDocument
		}
		result.Images = Images(doc, base)
		return nil
	})

	meta.TotalColorsFound = len(result.Colors)
	meta.TotalImagesFound = len(result.Images)
	meta.HasLogo = len(result.Logos) > 0
	meta.HasAboutSection = htmltext.Len(result.Text.About) > minSectionText
	meta.HasServicesSection = htmltext.Len(result.Text.Services) > minSectionText
	meta.HasContactInfo = result.Contact.Phone != "" || result.Contact.Email != "" || result.Contact.Address != ""
	if len(meta.Errors) == 0 {
		meta.Errors = nil
	}

	slog.Debug("content extracted",
		"url", scrape.URL,
		"colors", len(result.Colors),
		"logos", len(result.Logos),
		"images", len(result.Images),
		"failed", len(meta.Errors),
	)
	return result
}

// attempt runs one sub-task and records its outcome. A panic inside fn is
// recorded as a failure like any returned error.
func attempt(meta *models.ExtractionMetadata, part string, fn func() error) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		err = fn()
	}()

	if err != nil {
		meta.Succeeded[part] = false
		meta.Errors[part] = err.Error()
		slog.Warn("extraction step failed", "part", part, "error", err)
		return
	}
	meta.Succeeded[part] = true
}

func empty() models.ExtractionResult {
	succeeded := make(map[string]bool, len(Parts))
	for _, p := range Parts {
		succeeded[p] = false
	}
	return models.ExtractionResult{
		Colors: []string{},
		Logos:  []string{},
		Images: []models.ExtractedImage{},
		Metadata: models.ExtractionMetadata{
			Succeeded: succeeded,
			Errors:    map[string]string{},
		},
	}
}
