package prompt

import (
	"fmt"
	"strings"

	"brandstudio/internal/domain"
)

// Story slide canvas.
const (
	StoryAspectRatio = "9:16"
	storyFormat      = "Format: 9:16 portrait (1080x1920px Story)"

	textPrimaryColor   = "#FFFFFF"
	textSecondaryColor = "#F5F0E8"
)

// Block headers in compiled order.
const (
	HeaderScene       = "[SCENE LOGIC]"
	HeaderSubject     = "[SUBJECT]"
	HeaderComposition = "[COMPOSITION]"
	HeaderLighting    = "[LIGHTING]"
	HeaderText        = "[TEXT]"
	HeaderConstraints = "[CONSTRAINTS]"
)

// Headers lists the block headers in the order they appear in a compiled directive.
var Headers = []string{HeaderScene, HeaderSubject, HeaderComposition, HeaderLighting, HeaderText, HeaderConstraints}

type blockFunc func(domain.SlideSpec, domain.BrandProfile) string

var blocks = []blockFunc{
	sceneBlock,
	subjectBlock,
	compositionBlock,
	lightingBlock,
	textBlock,
	constraintsBlock,
}

// CompileSlide renders the six-block directive for a story slide. The output
// depends only on its inputs.
func CompileSlide(profile domain.BrandProfile, slide domain.SlideSpec) (string, error) {
	if slide.Type.Position() == 0 {
		return "", fmt.Errorf("compile slide %d: %w: %q", slide.Index, domain.ErrUnknownSlideType, slide.Type)
	}
	parts := make([]string, 0, len(blocks))
	for _, build := range blocks {
		parts = append(parts, build(slide, profile))
	}
	return strings.Join(parts, "\n\n"), nil
}

func sceneBlock(slide domain.SlideSpec, profile domain.BrandProfile) string {
	lines := []string{HeaderScene, sceneIntent(slide.Type, brandName(profile))}
	emotion := slide.EmotionalTarget
	if emotion == "" {
		emotion = domain.DefaultEmotion(slide.Type)
	}
	lines = append(lines, "The viewer should feel "+emotionText(emotion, brandName(profile))+".")
	lines = append(lines, "Topic: "+slide.Topic)
	if brief := strings.TrimSpace(slide.VisualBrief); brief != "" {
		lines = append(lines, brief)
	}
	if slide.Type == domain.SlideBridge {
		if value := strings.TrimSpace(slide.BridgeValue); value != "" {
			lines = append(lines, "Value offered: "+value)
		}
	}
	return strings.Join(lines, "\n")
}

func sceneIntent(t domain.SlideType, brand string) string {
	switch t {
	case domain.SlideHook:
		return "This opening hook slide must immediately arrest attention. The viewer scrolling through stories should stop because something feels mysterious, significant, or unresolved."
	case domain.SlideSetup:
		return "This setup slide provides context for the story. The viewer should feel they are learning something significant, being let in on knowledge that matters."
	case domain.SlideBridge:
		return fmt.Sprintf("This critical bridge slide connects the story content to what %s offers. The viewer should feel they are receiving insider access to knowledge and perspectives available through %s.", brand, brand)
	case domain.SlideEvidence:
		return "This evidence slide delivers the revelation. The viewer's curiosity built through previous slides is now satisfied with concrete proof."
	default:
		return "This final slide converts built interest into action. The viewer should feel invited into a community, motivated to engage, and clear on what to do next."
	}
}

func emotionText(e domain.EmotionalTarget, brand string) string {
	switch e {
	case domain.EmotionCuriosity:
		return "curious and intrigued, wanting to learn more"
	case domain.EmotionAnticipation:
		return "anticipation building, sensing something significant"
	case domain.EmotionTrust:
		return "trust and recognition of " + brand + " expertise"
	case domain.EmotionWonder:
		return "wonder and awe at the evidence revealed"
	case domain.EmotionMotivation:
		return "motivated to engage and become part of the community"
	default:
		return string(e)
	}
}

func subjectBlock(slide domain.SlideSpec, profile domain.BrandProfile) string {
	var guide string
	switch slide.Type {
	case domain.SlideHook:
		guide = `Primary: Subject shrouded in mystery
- Partial visibility (emerging from shadow, earth or time)
- Signs of age and authenticity (patina, wear, original context)
- Scale indicators for dramatic effect

Secondary: Context elements suggesting discovery
- Tools or measuring equipment where appropriate
- Environment true to the brand's visual style
- Dust particles catching light`
	case domain.SlideSetup:
		guide = `Primary: Contextual scene or establishing shot
- Wide enough to show environment
- Historical accuracy in architecture and artifacts
- Educational visual elements

Secondary: Supporting context
- Period-accurate environmental details
- Scale references for understanding
- Subtle indicators of location and time period`
	case domain.SlideBridge:
		guide = fmt.Sprintf(`Primary: Evidence or insight that %[1]s provides access to
- Detailed view suggesting expert analysis
- Documentation, research or exclusive access implied
- Professional context

Secondary: %[1]s value indicators
- Research materials or documentation visible
- Expert perspective suggested
- Premium, professional environment`, brandName(profile))
	case domain.SlideEvidence:
		guide = `Primary: The specific evidence, artifact or site
- Maximum detail and clarity
- Authenticity unmistakable
- Scale clear (include reference if helpful)

Secondary: Proof indicators
- Visible dating clues
- Original context preserved
- Expert documentation visible`
	default:
		guide = fmt.Sprintf(`Primary: Warm, inviting scene suggesting community and continuation
- Human connection implied (carefully rendered if people shown)
- Ongoing journey suggested
- %s community and value subtly present

Secondary: Future promise
- More to discover implied
- Community belonging suggested
- Welcome and inclusion`, brandName(profile))
	}
	return HeaderSubject + "\n" + guide + "\n\nVisual Brief: " + slide.VisualBrief
}

func compositionBlock(slide domain.SlideSpec, _ domain.BrandProfile) string {
	var framing, space string
	switch slide.Type {
	case domain.SlideHook:
		framing = "Framing: Subject positioned in upper-middle third, creating mystery"
		space = "Negative space: Lower 40% reserved for text overlay"
	case domain.SlideSetup:
		framing = "Framing: Wider establishing shot, educational clarity"
		space = "Negative space: Text area (top or bottom 35%)"
	case domain.SlideBridge:
		framing = "Framing: Intimate, detail-oriented, authoritative"
		space = "Negative space: Centered or lower text area"
	case domain.SlideEvidence:
		framing = "Framing: Close-up or detail shot, maximum clarity"
		space = "Negative space: Lower 30% for text"
	default:
		framing = "Framing: Open, inviting, welcoming composition"
		space = "Negative space: Centered large text area"
	}
	return strings.Join([]string{
		HeaderComposition,
		storyFormat,
		framing,
		"Depth:",
		"  - Foreground: Contextual framing elements",
		"  - Midground: Primary subject in focus",
		"  - Background: Atmosphere matching the brand's visual style",
		space,
	}, "\n")
}

func lightingBlock(slide domain.SlideSpec, _ domain.BrandProfile) string {
	var style string
	switch slide.Type {
	case domain.SlideHook:
		style = `Primary: Dramatic side lighting from upper left
Color temperature: Warm golden (3200K equivalent)
Key light intensity: High contrast, 4:1 ratio
Fill: Minimal, preserving mystery in shadows
Atmosphere: Visible dust motes in light beams`
	case domain.SlideSetup:
		style = `Primary: Natural daylight, golden hour preferred
Color temperature: Warm (3500K equivalent)
Quality: Soft, diffused, educational clarity
Fill: Adequate to see all important details
Atmosphere: Light haze suggesting age`
	case domain.SlideBridge:
		style = `Primary: Warm, confident lighting
Color temperature: Golden warm (3200K)
Quality: Professional, suggests expertise
Shadows: Soft, welcoming but authoritative
Accent lighting: Subtle rim light on key elements`
	case domain.SlideEvidence:
		style = `Primary: Revealing, documentary-style
Color temperature: Accurate for the subject (3400K base)
Quality: Sharp, detailed, professional
Shadows: Minimal, show all details
Special: Raking light to reveal texture and inscriptions`
	default:
		style = `Primary: Warm, golden, embracing
Color temperature: Very warm (3000K)
Quality: Soft, glowing, hopeful
Shadows: Minimal, warm-toned
Atmosphere: Golden hour, promising`
	}
	return HeaderLighting + "\n" + style
}

func textBlock(slide domain.SlideSpec, _ domain.BrandProfile) string {
	var position, alignment string
	switch slide.Type {
	case domain.SlideHook:
		position = "Position: Lower third (bottom 35% of frame)"
		alignment = "Alignment: Left-aligned with 48px margin"
	case domain.SlideSetup:
		position = "Position: Top or bottom third based on subject"
		alignment = "Alignment: Left-aligned with 48px margin"
	case domain.SlideBridge:
		position = "Position: Lower third or centered"
		alignment = "Alignment: Center or left with 48px margin"
	case domain.SlideEvidence:
		position = "Position: Lower third only"
		alignment = "Alignment: Left with 48px margin"
	default:
		position = "Position: Centered, prominent"
		alignment = "Alignment: Center"
	}

	// Copy is embedded verbatim, never re-quoted or escaped.
	content := `Content: "` + slide.TextCopy + `"`
	if slide.TextCopy == "" {
		content = "Content: none (no rendered text)"
	}

	lines := []string{
		HeaderText,
		content,
		position,
		"Typography:",
		"  - Font: Modern sans-serif, clean and professional",
		"  - Primary text color: " + textPrimaryColor,
		"  - Secondary text color: " + textSecondaryColor,
		"  - Size: Appropriate for Stories readability",
		"  - Line spacing: 1.3-1.4",
		"  - Background: Gradient overlay from transparent to 70% black",
		"  - Text shadow: Subtle, 2px offset for legibility",
		"  - " + alignment,
	}
	if slide.Type == domain.SlideCTA {
		cta := slide.CTAType
		if cta == "" {
			cta = domain.CTAFollow
		}
		lines = append(lines, "Call to action: "+string(cta))
	}
	return strings.Join(lines, "\n")
}

var (
	commonAvoid = []string{
		"Cool color temperatures (no blue/green tint)",
		"Stock photography aesthetic (avoid over-polished look)",
		"Anachronistic modern elements (no watches, phones, logos)",
		"Waxy or plastic skin textures on any human elements",
		"Anatomically incorrect hands (if hands are present)",
		"Text rendering errors or misspellings",
		"Compression artifacts or low resolution",
	}
	commonEnsureTail = []string{
		"Text is fully legible against background",
		"Aspect ratio exactly 9:16",
		"Authenticity in all details",
		"Warm tones throughout the image",
	}
)

func constraintsBlock(slide domain.SlideSpec, profile domain.BrandProfile) string {
	var avoid, ensure []string
	switch slide.Type {
	case domain.SlideHook:
		avoid = []string{"Fully visible subject (maintain mystery)", "Flat lighting (preserve drama)"}
		ensure = []string{"Subject creates genuine curiosity", "Dramatic atmosphere maintained"}
	case domain.SlideSetup:
		avoid = []string{"Cluttered compositions", "Harsh shadows obscuring important details"}
		ensure = []string{"Clear educational value visible", `Establishes "where and when" clearly`}
	case domain.SlideBridge:
		avoid = []string{"Hard selling aesthetic", "Disconnection from the story content"}
		ensure = []string{brandName(profile) + " value feels organic, not forced", "Authority and expertise conveyed"}
	case domain.SlideEvidence:
		avoid = []string{"Obscuring important evidence details", "Ambiguous scale", "Shadows hiding crucial features"}
		ensure = []string{"Evidence is clearly visible and convincing", `"Wow" factor achieved`}
	default:
		avoid = []string{"Cold or transactional feeling", "Isolated or exclusive imagery", "Abrupt ending feeling"}
		ensure = []string{"Warm, inviting atmosphere", "Clear call to action", "Community feeling conveyed"}
	}

	var sb strings.Builder
	sb.WriteString(HeaderConstraints + "\nAVOID:\n")
	writeBullets(&sb, commonAvoid)
	writeBullets(&sb, avoid)
	sb.WriteString("\nENSURE:\n")
	writeBullets(&sb, []string{fmt.Sprintf("Brand palette dominates (%s)", strings.TrimSpace(profile.Colors))})
	writeBullets(&sb, commonEnsureTail)
	writeBullets(&sb, ensure)
	return strings.TrimRight(sb.String(), "\n")
}

func writeBullets(sb *strings.Builder, items []string) {
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteByte('\n')
	}
}

func brandName(profile domain.BrandProfile) string {
	if name := strings.TrimSpace(profile.Name); name != "" {
		return name
	}
	return "the brand"
}
