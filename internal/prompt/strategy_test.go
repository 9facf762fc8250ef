package prompt

import (
	"strings"
	"testing"

	"brandstudio/internal/domain"
)

func TestSystemInstructionIncludesBrandAndPlatforms(t *testing.T) {
	profile := domain.DefaultBrandProfile()
	got := SystemInstruction(profile)

	checks := []string{
		"generator for Temple Mount Soil",
		"- **Tone:** " + profile.Tone,
		"- **Core Colors:** " + profile.Colors,
		"1. **Instagram Feed (1:1):**",
		"7. **Website (16:9):**",
		`"refinedPrompt"`,
	}
	for _, expect := range checks {
		if !strings.Contains(got, expect) {
			t.Fatalf("instruction missing %q", expect)
		}
	}
	if strings.Contains(got, "### TYPOGRAPHY") {
		t.Fatalf("typography section should be omitted when unset")
	}
}

func TestSystemInstructionTypography(t *testing.T) {
	profile := domain.DefaultBrandProfile()
	profile.Typography = &domain.Typography{HeadlineFont: "Cormorant", UppercaseCTA: true}
	got := SystemInstruction(profile)
	if !strings.Contains(got, "Headlines set in Cormorant (serif).") {
		t.Fatalf("headline rule missing: %s", got)
	}
	if !strings.Contains(got, `"LEARN MORE"`) {
		t.Fatalf("uppercase cta rule missing: %s", got)
	}
}

func TestTypographyCTAPhrase(t *testing.T) {
	rules := typographyRules(&domain.Typography{UppercaseCTA: true, CTAPhrase: "  shop the   collection "})
	if len(rules) != 1 || rules[0] != `Calls to action in uppercase, e.g. "SHOP THE COLLECTION".` {
		t.Fatalf("unexpected rules %q", rules)
	}

	rules = typographyRules(&domain.Typography{CTAPhrase: "Discover the heritage"})
	if len(rules) != 1 || rules[0] != `Calls to action read "Discover the heritage".` {
		t.Fatalf("phrase should be kept verbatim without uppercase, got %q", rules)
	}

	if rules := typographyRules(&domain.Typography{CTAPhrase: "   "}); rules != nil {
		t.Fatalf("blank phrase should produce no rules, got %q", rules)
	}
}

func TestPlatformRulesCopy(t *testing.T) {
	rules := PlatformRules()
	if len(rules) != 7 {
		t.Fatalf("expected 7 platform rules, got %d", len(rules))
	}
	rules[0].AspectRatio = "mutated"
	if PlatformRules()[0].AspectRatio != "1:1" {
		t.Fatalf("PlatformRules must return a copy")
	}
	rule, ok := RuleFor("youtube")
	if !ok || rule.AspectRatio != "16:9" {
		t.Fatalf("unexpected youtube rule: %+v %v", rule, ok)
	}
}

func TestRenderDirectiveModes(t *testing.T) {
	strategy := domain.BrandStrategy{Platform: "Amazon", LayoutStyle: "Infographic", RefinedPrompt: "Locket on cream linen."}
	profile := domain.DefaultBrandProfile()

	gen := RenderDirective(strategy, domain.RenderModeGenerate, 0, 0, profile)
	if !strings.HasPrefix(gen, "Mode: GENERATE.") {
		t.Fatalf("expected generate mode line: %s", gen)
	}
	if strings.Contains(gen, "Style reference") {
		t.Fatalf("no reference clause expected without references")
	}

	edit := RenderDirective(strategy, domain.RenderModeEdit, 1, 2, profile)
	if !strings.HasPrefix(edit, "Mode: EDIT.") {
		t.Fatalf("expected edit mode line: %s", edit)
	}
	if !strings.Contains(edit, "images 2 to 3 are brand reference images") {
		t.Fatalf("reference positions wrong: %s", edit)
	}
	if !strings.Contains(edit, "Locket on cream linen.") {
		t.Fatalf("refined prompt missing")
	}
}

func TestStrategyRequestMentionsReferences(t *testing.T) {
	profile := domain.DefaultBrandProfile()
	profile.ReferenceImages = make([]domain.ReferenceImage, 5)
	got := StrategyRequest("Make an Amazon hero", profile, 0)
	if !strings.Contains(got, "Create a strategy for a new image") {
		t.Fatalf("generate wording missing: %s", got)
	}
	if !strings.Contains(got, "The last 3 attached image(s) are BRAND REFERENCE IMAGES") {
		t.Fatalf("reference cap not reflected: %s", got)
	}
}

func TestDefaultStoryOverrides(t *testing.T) {
	story := DefaultStory("s1", "Pool of Siloam", map[domain.SlideType]string{domain.SlideCTA: "Join us."})
	if err := story.Validate(); err != nil {
		t.Fatalf("default story invalid: %v", err)
	}
	if story.Slides[4].TextCopy != "Join us." {
		t.Fatalf("override not applied: %q", story.Slides[4].TextCopy)
	}
	if !strings.Contains(story.Slides[0].TextCopy, "Pool of Siloam") {
		t.Fatalf("default copy should mention topic")
	}
	if SlideLabel(domain.SlideEvidence) != "Evidence" {
		t.Fatalf("unexpected label %q", SlideLabel(domain.SlideEvidence))
	}
}
