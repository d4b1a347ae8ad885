package extractor

import "github.com/use-agent/sitescan/models"

var fallbackPalettes = map[string][]string{
	"restaurant":      {"#8B4513", "#D2691E", "#FFF8DC", "#2C1810"},
	"professional":    {"#1E3A8A", "#475569", "#F8FAFC", "#334155"},
	"home_services":   {"#2563EB", "#F97316", "#FFFFFF", "#1E40AF"},
	"health_medical":  {"#3B82F6", "#FFFFFF", "#10B981", "#E0F2FE"},
	"beauty_wellness": {"#EC4899", "#A855F7", "#FDF2F8", "#F3E8FF"},
	"fitness":         {"#DC2626", "#171717", "#F97316", "#FEE2E2"},
	"retail":          {"#8B5CF6", "#F472B6", "#FFFFFF", "#DDD6FE"},
	"real_estate":     {"#1E40AF", "#D97706", "#FFFFFF", "#DBEAFE"},
	"automotive":      {"#64748B", "#DC2626", "#FFFFFF", "#F1F5F9"},
	"education":       {"#2563EB", "#FBBF24", "#10B981", "#DBEAFE"},
	"creative":        {"#8B5CF6", "#EC4899", "#F59E0B", "#F3E8FF"},
	"hospitality":     {"#0EA5E9", "#F5F5DC", "#10B981", "#E0F2FE"},
}

var defaultPalette = []string{"#3B82F6", "#FFFFFF", "#1F2937"}

// FallbackColors returns the default palette for a business type. Unknown
// types, including the general fallback, get a neutral blue palette.
// Fallback palettes are design defaults and may contain white.
func FallbackColors(businessType string) []string {
	p, ok := fallbackPalettes[businessType]
	if !ok {
		p = defaultPalette
	}
	return append([]string(nil), p...)
}

// PaletteOrFallback returns the extracted colors, or the business-type
// fallback palette when extraction found none.
func PaletteOrFallback(result models.ExtractionResult, businessType string) []string {
	if len(result.Colors) > 0 {
		return append([]string(nil), result.Colors...)
	}
	return FallbackColors(businessType)
}
