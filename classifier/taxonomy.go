package classifier

// Category is one business niche of the taxonomy. Keyword sets are matched
// as lower-case substrings of the search text.
type Category struct {
	Name    string `yaml:"name"`
	Display string `yaml:"display"`

	// Primary keywords score 10 each, Secondary keywords 3 each.
	Primary   []string `yaml:"primary"`
	Secondary []string `yaml:"secondary"`

	// Indicators score 5 each, and only when page text is available.
	Indicators []string `yaml:"indicators"`

	// Tags refine the category once it has won.
	Tags []Tag `yaml:"tags"`
}

// Tag is a secondary descriptive label with the keywords that select it.
type Tag struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// DefaultTaxonomy returns the built-in taxonomy in declaration order.
// Order matters: ties go to the earlier entry.
func DefaultTaxonomy() []Category {
	out := make([]Category, len(defaultTaxonomy))
	for i, c := range defaultTaxonomy {
		out[i] = c.clone()
	}
	return out
}

var defaultTaxonomy = []Category{
	{
		Name:       "restaurant",
		Display:    "Restaurant/Cafe",
		Primary:    []string{"restaurant", "cafe", "dining", "food", "cuisine", "menu", "chef", "bistro", "eatery"},
		Secondary:  []string{"pizza", "italian", "chinese", "indian", "thai", "sushi", "japanese", "mexican", "burger", "barbecue", "bbq", "steakhouse", "seafood", "vegan", "vegetarian"},
		Indicators: []string{"menu page", "reservation", "delivery", "takeout", "hours", "food photos"},
		Tags: []Tag{
			{Name: "italian", Keywords: []string{"italian", "pasta", "pizza", "romano"}},
			{Name: "chinese", Keywords: []string{"chinese", "dim sum", "wok", "asian"}},
			{Name: "mexican", Keywords: []string{"mexican", "taco", "burrito", "salsa"}},
			{Name: "fast_food", Keywords: []string{"fast food", "quick service", "drive-thru"}},
			{Name: "fine_dining", Keywords: []string{"fine dining", "upscale", "gourmet", "michelin"}},
			{Name: "casual", Keywords: []string{"casual", "family", "friendly", "neighborhood"}},
			{Name: "cafe", Keywords: []string{"cafe", "coffee", "bakery", "breakfast"}},
		},
	},
	{
		Name:       "professional",
		Display:    "Professional Services",
		Primary:    []string{"lawyer", "attorney", "legal", "accountant", "accounting", "consultant", "consulting", "financial", "advisor", "cpa", "tax"},
		Secondary:  []string{"law firm", "bookkeeping", "audit", "litigation", "contract", "business consulting", "strategy"},
		Indicators: []string{"credentials", "case studies", "consultation", "practice areas", "attorney", "certified"},
		Tags: []Tag{
			{Name: "legal", Keywords: []string{"lawyer", "attorney", "solicitor", "law firm", "legal"}},
			{Name: "accounting", Keywords: []string{"accountant", "accounting", "bookkeeping", "cpa", "tax"}},
			{Name: "consulting", Keywords: []string{"consultant", "consulting", "advisory", "strategy"}},
		},
	},
	{
		Name:       "home_services",
		Display:    "Home Services",
		Primary:    []string{"plumber", "plumbing", "electrician", "electrical", "hvac", "heating", "cooling", "carpenter", "carpentry", "locksmith", "handyman"},
		Secondary:  []string{"repair", "installation", "maintenance", "emergency", "24/7", "licensed", "insured"},
		Indicators: []string{"service area", "emergency", "licensed", "insured", "free quote", "24/7"},
		Tags: []Tag{
			{Name: "emergency", Keywords: []string{"emergency", "24/7", "24 hour", "urgent"}},
			{Name: "residential", Keywords: []string{"residential", "home", "house"}},
			{Name: "commercial", Keywords: []string{"commercial", "business", "industrial"}},
		},
	},
	{
		Name:       "health_medical",
		Display:    "Health/Medical",
		Primary:    []string{"dentist", "dental", "doctor", "physician", "clinic", "medical", "therapy", "therapist", "chiropractor", "physiotherapy"},
		Secondary:  []string{"healthcare", "wellness", "treatment", "patient", "diagnosis", "surgery", "orthodontic", "pediatric"},
		Indicators: []string{"appointment", "insurance", "patients", "services", "doctors", "treatments"},
		Tags: []Tag{
			{Name: "dental", Keywords: []string{"dentist", "dental", "orthodontic"}},
			{Name: "therapy", Keywords: []string{"therapy", "therapist", "physiotherapy", "chiropractor"}},
			{Name: "general_practice", Keywords: []string{"doctor", "physician", "general practice", "family medicine"}},
		},
	},
	{
		Name:       "beauty_wellness",
		Display:    "Beauty/Wellness",
		Primary:    []string{"salon", "spa", "massage", "barber", "nails", "manicure", "pedicure", "beauty", "hair", "hairstylist"},
		Secondary:  []string{"facial", "waxing", "makeup", "cosmetic", "skincare", "relaxation", "aromatherapy"},
		Indicators: []string{"services", "pricing", "booking", "before/after", "gallery", "testimonials"},
		Tags: []Tag{
			{Name: "hair", Keywords: []string{"hair", "salon", "barber", "hairstylist"}},
			{Name: "nails", Keywords: []string{"nails", "manicure", "pedicure"}},
			{Name: "spa", Keywords: []string{"spa", "massage", "facial", "relaxation"}},
		},
	},
	{
		Name:       "fitness",
		Display:    "Fitness",
		Primary:    []string{"gym", "fitness", "yoga", "pilates", "personal training", "crossfit", "workout", "exercise"},
		Secondary:  []string{"weight loss", "muscle", "cardio", "strength", "wellness", "health club", "boxing", "martial arts"},
		Indicators: []string{"classes", "schedule", "membership", "trainers", "facilities", "programs"},
		Tags: []Tag{
			{Name: "gym", Keywords: []string{"gym", "health club", "weights"}},
			{Name: "studio", Keywords: []string{"yoga", "pilates", "studio"}},
			{Name: "combat", Keywords: []string{"boxing", "martial arts", "mma", "kickboxing"}},
		},
	},
	{
		Name:       "retail",
		Display:    "Retail/Shop",
		Primary:    []string{"shop", "store", "boutique", "retail", "products", "merchandise", "clothing", "apparel", "fashion"},
		Secondary:  []string{"ecommerce", "shopping", "buy", "sale", "discount", "online store", "marketplace"},
		Indicators: []string{"products", "cart", "checkout", "shipping", "returns", "catalog"},
		Tags: []Tag{
			{Name: "fashion", Keywords: []string{"clothing", "apparel", "fashion", "boutique"}},
			{Name: "online", Keywords: []string{"ecommerce", "online store", "shipping", "checkout"}},
		},
	},
	{
		Name:       "real_estate",
		Display:    "Real Estate",
		Primary:    []string{"realtor", "real estate", "property", "homes", "houses", "apartments", "estate agent", "realty"},
		Secondary:  []string{"buying", "selling", "rental", "lease", "commercial", "residential", "investment", "listing"},
		Indicators: []string{"listings", "properties", "search", "agents", "mls", "sold"},
		Tags: []Tag{
			{Name: "sales", Keywords: []string{"buying", "selling", "for sale"}},
			{Name: "lettings", Keywords: []string{"rental", "lease", "to let", "lettings"}},
			{Name: "commercial", Keywords: []string{"commercial", "office space", "retail units"}},
		},
	},
	{
		Name:       "automotive",
		Display:    "Automotive",
		Primary:    []string{"mechanic", "auto repair", "car service", "automotive", "garage", "vehicle", "auto shop"},
		Secondary:  []string{"oil change", "brake", "transmission", "engine", "tire", "inspection", "diagnostic", "body shop"},
		Indicators: []string{"services", "appointment", "diagnostics", "warranty", "certified", "repairs"},
		Tags: []Tag{
			{Name: "repair", Keywords: []string{"repair", "mechanic", "brake", "transmission"}},
			{Name: "bodywork", Keywords: []string{"body shop", "bodywork", "paint", "dent"}},
		},
	},
	{
		Name:       "education",
		Display:    "Education",
		Primary:    []string{"school", "training", "courses", "tutoring", "education", "learning", "academy", "institute"},
		Secondary:  []string{"teaching", "lessons", "class", "workshop", "certification", "online learning", "coaching"},
		Indicators: []string{"courses", "enrollment", "tuition", "curriculum", "instructors", "certification"},
		Tags: []Tag{
			{Name: "tutoring", Keywords: []string{"tutor", "tutoring", "lessons"}},
			{Name: "online", Keywords: []string{"online learning", "online course", "e-learning"}},
		},
	},
	{
		Name:       "creative",
		Display:    "Creative Services",
		Primary:    []string{"photographer", "photography", "designer", "design", "agency", "studio", "creative", "artist"},
		Secondary:  []string{"graphic design", "web design", "branding", "marketing", "advertising", "video", "production"},
		Indicators: []string{"portfolio", "work", "clients", "packages", "projects", "gallery"},
		Tags: []Tag{
			{Name: "photography", Keywords: []string{"photographer", "photography", "photo"}},
			{Name: "design", Keywords: []string{"graphic design", "web design", "branding"}},
			{Name: "video", Keywords: []string{"video", "film", "production"}},
		},
	},
	{
		Name:       "hospitality",
		Display:    "Hospitality",
		Primary:    []string{"hotel", "motel", "accommodation", "bnb", "bed and breakfast", "resort", "inn", "lodging"},
		Secondary:  []string{"rooms", "booking", "stay", "guest", "vacation", "travel", "amenities", "hospitality"},
		Indicators: []string{"rooms", "availability", "check-in", "amenities", "location", "rates"},
		Tags: []Tag{
			{Name: "boutique", Keywords: []string{"boutique", "luxury", "spa"}},
			{Name: "budget", Keywords: []string{"budget", "hostel", "affordable"}},
		},
	},
}

var displayNames = map[string]string{
	"general": "General Business",
}

func init() {
	for _, c := range defaultTaxonomy {
		displayNames[c.Name] = c.Display
	}
}

func (c Category) clone() Category {
	out := c
	out.Primary = append([]string(nil), c.Primary...)
	out.Secondary = append([]string(nil), c.Secondary...)
	out.Indicators = append([]string(nil), c.Indicators...)
	out.Tags = make([]Tag, len(c.Tags))
	for i, t := range c.Tags {
		out.Tags[i] = Tag{Name: t.Name, Keywords: append([]string(nil), t.Keywords...)}
	}
	return out
}
