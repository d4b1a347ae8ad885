package scraper

import (
	"reflect"
	"strings"
	"testing"

	"github.com/use-agent/sitescan/models"
)

const restaurantPage = `<!DOCTYPE html>
<html>
<head>
<title>Bella Cucina | Italian Restaurant</title>
<meta name="description" content="Family Italian restaurant in Leeds">
<link rel="stylesheet" href="/css/site.css">
<link rel="stylesheet" href="/css/missing.css">
</head>
<body>
<header>
<img src="/img/brand-mark.png" alt="Bella Cucina logo">
<nav>
<a href="/">Home</a>
<a href="/menu">Our Menu</a>
<a href="/contact">Contact</a>
</nav>
</header>
<section class="hero">
<h1>Authentic Italian Cooking</h1>
<p>Fresh pasta made by hand every single morning.</p>
</section>
<section id="about">
<h2>About Us</h2>
<p>We are a family run trattoria established in 1998, serving recipes from Naples.</p>
</section>
<div class="food-menu">
<h3>Starters</h3>
<ul>
<li>Bruschetta</li>
<li>Arancini</li>
<li>Tea</li>
</ul>
</div>
<div class="services">
<div class="service-card">
<h4>Private Dining</h4>
<p>Rooms for up to 40 guests.</p>
</div>
</div>
<img src="/img/dining-room.jpg" alt="Dining room">
<img data-src="/img/pasta.jpg" alt="Pasta">
<img src="/img/icons/phone.svg">
<img src="/img/award.png" alt="Award winner 2023">
<div class="testimonial">
<p>The best carbonara I have had outside of Rome!</p>
<span class="author-name">Jane D.</span>
</div>
<div class="testimonial">
<p>The best carbonara I have had outside of Rome!!</p>
</div>
<footer>
<p class="address">12 High Street, Leeds LS1 4AB</p>
<p>Call 0113 496 0000 or email hello@bellacucina.co.uk</p>
<div class="opening-hours">Mon-Sun 12:00 - 22:00</div>
<a href="https://www.facebook.com/bellacucina">Facebook</a>
<a href="https://instagram.com/bellacucina">Instagram</a>
</footer>
</body>
</html>`

func TestParse_RestaurantPage(t *testing.T) {
	r, err := Parse("https://bella.example/", restaurantPage)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if r.Domain != "bella.example" {
		t.Errorf("Domain = %q", r.Domain)
	}
	if r.Logo != "https://bella.example/img/brand-mark.png" {
		t.Errorf("Logo = %q", r.Logo)
	}

	h := r.Headlines
	if h.PageTitle != "Bella Cucina | Italian Restaurant" {
		t.Errorf("PageTitle = %q", h.PageTitle)
	}
	if h.MainHeadline != "Authentic Italian Cooking" {
		t.Errorf("MainHeadline = %q", h.MainHeadline)
	}
	if h.MetaDescription != "Family Italian restaurant in Leeds" {
		t.Errorf("MetaDescription = %q", h.MetaDescription)
	}
	if !strings.Contains(h.HeroText, "Fresh pasta made by hand") {
		t.Errorf("HeroText = %q", h.HeroText)
	}

	if !strings.Contains(r.About, "family run trattoria") {
		t.Errorf("About = %q", r.About)
	}

	wantServices := []models.ServiceItem{
		{Name: "Bruschetta", Category: "Starters", Kind: models.KindMenuItem},
		{Name: "Arancini", Category: "Starters", Kind: models.KindMenuItem},
		{Name: "Private Dining", Description: "Rooms for up to 40 guests.", Category: "Services", Kind: models.KindService},
	}
	if !reflect.DeepEqual(r.Services, wantServices) {
		t.Errorf("Services = %+v", r.Services)
	}

	wantImages := []models.ImageRef{
		{URL: "https://bella.example/img/brand-mark.png", Alt: "Bella Cucina logo"},
		{URL: "https://bella.example/img/dining-room.jpg", Alt: "Dining room"},
		{URL: "https://bella.example/img/pasta.jpg", Alt: "Pasta"},
		{URL: "https://bella.example/img/award.png", Alt: "Award winner 2023"},
	}
	if !reflect.DeepEqual(r.Images, wantImages) {
		t.Errorf("Images = %+v", r.Images)
	}

	wantContact := models.ContactInfo{
		Phone:   "0113 496 0000",
		Email:   "hello@bellacucina.co.uk",
		Address: "12 High Street, Leeds LS1 4AB",
		Hours:   "Mon-Sun 12:00 - 22:00",
	}
	if r.Contact != wantContact {
		t.Errorf("Contact = %+v", r.Contact)
	}

	wantSocial := map[string]string{
		"facebook":  "https://www.facebook.com/bellacucina",
		"instagram": "https://instagram.com/bellacucina",
	}
	if !reflect.DeepEqual(r.Social, wantSocial) {
		t.Errorf("Social = %v", r.Social)
	}

	if !reflect.DeepEqual(r.Certifications, []string{"Award winner 2023"}) {
		t.Errorf("Certifications = %v", r.Certifications)
	}
	if !reflect.DeepEqual(r.Navigation, []string{"Home", "Our Menu", "Contact"}) {
		t.Errorf("Navigation = %v", r.Navigation)
	}

	wantTestimonials := []models.Testimonial{
		{Author: "Jane D.", Text: "The best carbonara I have had outside of Rome!"},
	}
	if !reflect.DeepEqual(r.Testimonials, wantTestimonials) {
		t.Errorf("Testimonials = %+v", r.Testimonials)
	}

	if strings.Contains(r.Text, "Bella Cucina | Italian") {
		t.Error("Text should not include the <title>")
	}
	if !strings.Contains(r.Text, "Authentic Italian Cooking") {
		t.Errorf("Text = %q", r.Text)
	}
	if r.Doc == nil {
		t.Error("Doc should be set")
	}
}

func TestParse_EmptyPage(t *testing.T) {
	r, err := Parse("https://empty.example/", "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Logo != "" || r.About != "" || r.Contact != (models.ContactInfo{}) {
		t.Errorf("unexpected fields on empty page: %+v", r)
	}
	if r.Images == nil || r.Services == nil || r.Navigation == nil || r.Testimonials == nil || r.Certifications == nil {
		t.Error("collections should be empty, not nil")
	}
}

func TestParseLogo_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"src attribute", `<img src="/a.png"><img src="/img/logo-dark.svg">`, "https://x.example/img/logo-dark.svg"},
		{"class attribute", `<img class="Site-Logo" src="/b.png">`, "https://x.example/b.png"},
		{"container", `<div class="navbar-brand"><img src="/c.png"></div>`, "https://x.example/c.png"},
		{"header image", `<header><img src="/d.png"></header><img src="/e.png">`, "https://x.example/d.png"},
		{"data uri skipped", `<img alt="logo" src="data:image/png;base64,AAAA">`, ""},
		{"none", `<p>no images</p>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse("https://x.example/", tt.html)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if r.Logo != tt.want {
				t.Errorf("Logo = %q, want %q", r.Logo, tt.want)
			}
		})
	}
}

func TestParseAbout_ParagraphFallback(t *testing.T) {
	page := `<p>Short.</p>
<p>Since 2004 our small team has repaired boilers, radiators and underfloor heating across the whole of West Yorkshire.</p>`
	r, _ := Parse("https://x.example/", page)
	if !strings.HasPrefix(r.About, "Since 2004 our small team") {
		t.Errorf("About = %q", r.About)
	}
}

func TestParsePhone_SkipsShortNumbers(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Open since 1998. Call 020 7946 0958 today", "020 7946 0958"},
		{"Prices from 120 to 450", ""},
		{"+44 161 496 0000", "+44 161 496 0000"},
	}
	for _, tt := range tests {
		r, _ := Parse("https://x.example/", "<p>"+tt.text+"</p>")
		if r.Contact.Phone != tt.want {
			t.Errorf("phone in %q = %q, want %q", tt.text, r.Contact.Phone, tt.want)
		}
	}
}

func TestParseSocial_FirstLinkPerPlatform(t *testing.T) {
	page := `<a href="https://twitter.com/first">t</a>
<a href="https://twitter.com/second">t</a>
<a href="https://www.linkedin.com/company/acme">in</a>
<a href="https://www.youtube.com/@acme">yt</a>
<a href="https://www.netflix.com/title">n</a>
<a href="https://www.tripadvisor.co.uk/Restaurant_Review-acme">ta</a>`
	r, _ := Parse("https://x.example/", page)
	want := map[string]string{
		"twitter":     "https://twitter.com/first",
		"linkedin":    "https://www.linkedin.com/company/acme",
		"youtube":     "https://www.youtube.com/@acme",
		"tripadvisor": "https://www.tripadvisor.co.uk/Restaurant_Review-acme",
	}
	if !reflect.DeepEqual(r.Social, want) {
		t.Errorf("Social = %v, want %v", r.Social, want)
	}
}

func TestParseCertifications_DedupedAndCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<img alt="Gas Safe certified"><img alt="Gas Safe certified">`)
	b.WriteString(`<span class="award-badge">Best Plumber 2024</span>`)
	for i := 0; i < 15; i++ {
		b.WriteString(`<img alt="Member no. ` + string(rune('a'+i)) + `">`)
	}
	r, _ := Parse("https://x.example/", b.String())
	if len(r.Certifications) != maxCerts {
		t.Fatalf("got %d certifications, want %d", len(r.Certifications), maxCerts)
	}
	if r.Certifications[0] != "Gas Safe certified" || r.Certifications[1] == "Gas Safe certified" {
		t.Errorf("Certifications = %v", r.Certifications)
	}
}

func TestParseImages_Capped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 60; i++ {
		b.WriteString(`<img src="/p` + string(rune('A'+i%26)) + `.jpg">`)
	}
	r, _ := Parse("https://x.example/", b.String())
	if len(r.Images) != maxImages {
		t.Errorf("got %d images, want %d", len(r.Images), maxImages)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"img/a.png", "https://x.example/dir/img/a.png"},
		{"/a.png", "https://x.example/a.png"},
		{"//cdn.example/a.png", "https://cdn.example/a.png"},
		{"  ", ""},
		{"javascript:void(0)", ""},
		{"DATA:image/gif;base64,R0lG", ""},
	}
	base := mustURL(t, "https://x.example/dir/page.html")
	for _, tt := range tests {
		if got := resolve(base, tt.ref); got != tt.want {
			t.Errorf("resolve(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}
