package prompt

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"brandstudio/internal/domain"
)

// MaxStrategyReferences caps how many brand reference images accompany a
// reasoning request.
const MaxStrategyReferences = 3

var platformRules = []domain.PlatformRule{
	{Platform: "Instagram Feed", AspectRatio: "1:1", LayoutStyle: "Editorial Box", Notes: "Educational, storytelling."},
	{Platform: "Instagram Stories", AspectRatio: "9:16", LayoutStyle: "Minimal Caption", Notes: "Quick tips."},
	{Platform: "Facebook", AspectRatio: "1.91:1 or 1:1", LayoutStyle: "Editorial Box", Notes: "Long-form."},
	{Platform: "Truth Social", AspectRatio: "16:9", LayoutStyle: "Bold Statement", Notes: "Patriotic, bold."},
	{Platform: "Amazon", AspectRatio: "1:1", LayoutStyle: "Infographic", Notes: "Clean product shots."},
	{Platform: "YouTube", AspectRatio: "16:9", LayoutStyle: "Bold Statement", Notes: "High contrast."},
	{Platform: "Website", AspectRatio: "16:9", LayoutStyle: "Dramatic", Notes: "Dramatic, usually no text."},
}

// PlatformRules returns a copy of the fixed platform table.
func PlatformRules() []domain.PlatformRule {
	out := make([]domain.PlatformRule, len(platformRules))
	copy(out, platformRules)
	return out
}

// RuleFor looks up a platform by case-insensitive name.
func RuleFor(platform string) (domain.PlatformRule, bool) {
	key := strings.ToLower(strings.TrimSpace(platform))
	for _, rule := range platformRules {
		if strings.ToLower(rule.Platform) == key {
			return rule, true
		}
	}
	return domain.PlatformRule{}, false
}

// SystemInstruction builds the reasoning-stage system instruction for a brand.
func SystemInstruction(profile domain.BrandProfile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a visual content strategist and generator for %s.\n", brandName(profile))
	fmt.Fprintf(&sb, "Context: %s\n\n", strings.TrimSpace(profile.Context))

	sb.WriteString("### BRAND IDENTITY\n")
	fmt.Fprintf(&sb, "- **Tone:** %s\n", strings.TrimSpace(profile.Tone))
	fmt.Fprintf(&sb, "- **Core Colors:** %s\n", strings.TrimSpace(profile.Colors))
	fmt.Fprintf(&sb, "- **Visual Style:** %s\n", strings.TrimSpace(profile.VisualStyle))
	fmt.Fprintf(&sb, "- **Product Details:** %s\n", strings.TrimSpace(profile.ProductDescription))

	if rules := typographyRules(profile.Typography); len(rules) > 0 {
		sb.WriteString("\n### TYPOGRAPHY\n")
		for _, rule := range rules {
			sb.WriteString("- " + rule + "\n")
		}
	}

	sb.WriteString("\n### PLATFORM RULES\n")
	for i, rule := range platformRules {
		fmt.Fprintf(&sb, "%d. **%s (%s):** %s Style: %s.\n", i+1, rule.Platform, rule.AspectRatio, rule.Notes, rule.LayoutStyle)
	}

	sb.WriteString(`
### YOUR TASK
The user will provide a request and OPTIONALLY input images. Analyze the best platform and strategy, then write a refined prompt that the image model will use to generate or edit the image.

If an image is provided: focus on editing or enhancing it based on the request.
If NO image is provided: generate a new image from scratch based on the request and brand guidelines.

CRITICAL: The "refinedPrompt" must explicitly describe the visual style and product details defined in the Brand Identity section above. Do not assume the image generator knows the brand. Describe the lighting, camera, textures and product appearance in detail.

Output JSON only:
{
  "platform": "Selected Platform",
  "aspectRatio": "e.g., 1:1",
  "layoutStyle": "e.g., Editorial Box",
  "reasoning": "Brief explanation of why this strategy was chosen.",
`)
	fmt.Fprintf(&sb, "  \"refinedPrompt\": \"A highly detailed image generation prompt. It MUST include the Visual Style keywords ('%s...') and Product Details if relevant.\"\n}\n", truncateRunes(strings.TrimSpace(profile.VisualStyle), 50))
	return sb.String()
}

// StrategyRequest builds the user-turn text for the reasoning call.
func StrategyRequest(instruction string, profile domain.BrandProfile, inputImages int) string {
	parts := []string{fmt.Sprintf("Analyze this request: %q.", strings.TrimSpace(instruction))}
	if inputImages > 0 {
		parts = append(parts, fmt.Sprintf("Base your strategy on the %d attached user-uploaded image(s).", inputImages))
	} else {
		parts = append(parts, "Create a strategy for a new image based on this request.")
	}
	if refs := min(len(profile.ReferenceImages), MaxStrategyReferences); refs > 0 {
		parts = append(parts, fmt.Sprintf("The last %d attached image(s) are BRAND REFERENCE IMAGES: use them to understand the visual style and product look required. They are style reference only, not content to reproduce.", refs))
	}
	return strings.Join(parts, " ")
}

// RenderDirective builds the single-image render directive from a resolved strategy.
// Source images come first in the request, references after them.
func RenderDirective(strategy domain.BrandStrategy, mode domain.RenderMode, sourceCount, referenceCount int, profile domain.BrandProfile) string {
	var lines []string
	switch mode {
	case domain.RenderModeEdit:
		lines = append(lines, fmt.Sprintf("Mode: EDIT. Modify the supplied image (image 1 to %d) according to the directive. Preserve the product's shape, texture and logo.", max(sourceCount, 1)))
	default:
		lines = append(lines, "Mode: GENERATE. Create a new image from scratch according to the directive.")
	}
	lines = append(lines, strings.TrimSpace(strategy.RefinedPrompt))
	if product := strings.TrimSpace(strategy.FeaturedProduct); product != "" {
		lines = append(lines, "Featured product: "+product+".")
	}
	if layout := strings.TrimSpace(strategy.LayoutStyle); layout != "" {
		lines = append(lines, fmt.Sprintf("Layout style: %s for %s.", layout, strings.TrimSpace(strategy.Platform)))
	}
	for _, rule := range typographyRules(profile.Typography) {
		lines = append(lines, "Typography: "+rule)
	}
	if referenceCount > 0 {
		first := sourceCount + 1
		last := sourceCount + referenceCount
		pos := fmt.Sprintf("image %d", first)
		if last > first {
			pos = fmt.Sprintf("images %d to %d", first, last)
		}
		lines = append(lines, fmt.Sprintf("Style reference: %s are brand reference images. Match their lighting, palette and textures only; they are not authoritative content and must not be copied.", pos))
	}
	return strings.Join(lines, "\n")
}

// AnalysisInstruction is the reasoning prompt used to extract brand style
// and product details from reference images.
const AnalysisInstruction = `You are an expert Creative Director and Visual Strategist.
Analyze the attached reference images which represent a specific brand.

Extract two distinct, highly detailed descriptions:
1. "visualStyle": the photography style, lighting, color grading, composition, textures and mood.
2. "productDescription": a physical description of the products shown. Materials, shapes, finishes, colors and key details.

Be precise and descriptive. These descriptions will be used to generate new images that look exactly like this brand.`

const defaultCTAPhrase = "learn more"

func typographyRules(t *domain.Typography) []string {
	if t.IsZero() {
		return nil
	}
	var rules []string
	if font := strings.TrimSpace(t.HeadlineFont); font != "" {
		rules = append(rules, fmt.Sprintf("Headlines set in %s (serif).", font))
	}
	if font := strings.TrimSpace(t.BodyFont); font != "" {
		rules = append(rules, fmt.Sprintf("Body copy set in %s.", font))
	}
	phrase := strings.Join(strings.Fields(t.CTAPhrase), " ")
	switch {
	case t.UppercaseCTA:
		if phrase == "" {
			phrase = defaultCTAPhrase
		}
		rules = append(rules, fmt.Sprintf("Calls to action in uppercase, e.g. %q.", cases.Upper(language.English).String(phrase)))
	case phrase != "":
		rules = append(rules, fmt.Sprintf("Calls to action read %q.", phrase))
	}
	return rules
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
