package models

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ScrapeResult is everything the fetcher learned about one website.
// It is built once per fetch attempt and never mutated afterwards; later
// stages only read from it.
type ScrapeResult struct {
	// URL is the address that was requested.
	URL string `json:"url"`

	// FinalURL is the address after redirects.
	FinalURL string `json:"final_url"`

	// Domain is the host of URL.
	Domain string `json:"domain"`

	// EngineUsed names the fetch engine that produced the page ("http", "rod").
	EngineUsed string `json:"engine_used,omitempty"`

	StatusCode int   `json:"status_code,omitempty"`
	FetchMs    int64 `json:"fetch_ms"`

	// RawHTML is the page markup followed by a <style> block holding the
	// fetched external stylesheets.
	RawHTML string `json:"raw_html,omitempty"`

	// Text is the visible page text, whitespace collapsed, capped at 5000 characters.
	Text string `json:"text"`

	Images     []ImageRef        `json:"images"`
	Navigation []string          `json:"navigation"`
	Social     map[string]string `json:"social"`
	Logo       string            `json:"logo,omitempty"`
	Headlines  Headlines         `json:"headlines"`
	About      string            `json:"about,omitempty"`
	Services   []ServiceItem     `json:"services"`
	Contact    ContactInfo       `json:"contact"`

	Testimonials   []Testimonial `json:"testimonials"`
	Certifications []string      `json:"certifications"`

	// Stylesheets is the number of external stylesheets merged into RawHTML.
	Stylesheets int `json:"stylesheets"`

	Digest Digest `json:"digest"`

	// Doc is the parsed page. It is shared read-only by the analysis stages.
	Doc *goquery.Document `json:"-"`
}

// Document returns the parsed page, parsing RawHTML when the result was
// built without one (e.g. decoded from JSON).
func (r *ScrapeResult) Document() *goquery.Document {
	if r == nil {
		return nil
	}
	if r.Doc != nil {
		return r.Doc
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(r.RawHTML))
	if err != nil {
		return nil
	}
	return doc
}

// BaseURL is the address relative links should be resolved against.
func (r *ScrapeResult) BaseURL() string {
	if r == nil {
		return ""
	}
	if r.FinalURL != "" {
		return r.FinalURL
	}
	return r.URL
}

// ImageRef is an image discovered on the page.
type ImageRef struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// Headlines are the prominent text fragments of a page.
type Headlines struct {
	PageTitle       string `json:"page_title,omitempty"`
	MainHeadline    string `json:"main_headline,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
	HeroText        string `json:"hero_text,omitempty"`
}

// Service kinds.
const (
	KindMenuItem = "menu_item"
	KindService  = "service"
)

// ServiceItem is one menu entry or service card.
type ServiceItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Kind        string `json:"kind"`
}

// ContactInfo holds whatever contact details were found.
type ContactInfo struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Hours   string `json:"hours,omitempty"`
}

// Testimonial is a customer quote.
type Testimonial struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// Digest is a readability summary of the main page content, in a form that
// is cheap to drop into a prompt.
type Digest struct {
	SiteName string `json:"site_name,omitempty"`
	Excerpt  string `json:"excerpt,omitempty"`
	Markdown string `json:"markdown,omitempty"`
	Tokens   int    `json:"tokens"`
}
