package prompt

import (
	"errors"
	"strings"
	"testing"

	"brandstudio/internal/domain"
)

func sampleSlide(t domain.SlideType) domain.SlideSpec {
	return domain.SlideSpec{
		Index:           t.Position(),
		Type:            t,
		TextCopy:        "For 2,000 years, skeptics claimed this pool was a myth.",
		VisualBrief:     "Ancient stone steps emerging from excavation.",
		EmotionalTarget: domain.DefaultEmotion(t),
		Topic:           "Pool of Siloam",
	}
}

func TestCompileSlideHeadersInOrder(t *testing.T) {
	profile := domain.DefaultBrandProfile()
	for _, st := range domain.SlideOrder {
		got, err := CompileSlide(profile, sampleSlide(st))
		if err != nil {
			t.Fatalf("compile %s: %v", st, err)
		}
		last := -1
		for _, header := range Headers {
			idx := strings.Index(got, header)
			if idx < 0 {
				t.Fatalf("%s: missing header %s", st, header)
			}
			if idx <= last {
				t.Fatalf("%s: header %s out of order", st, header)
			}
			if strings.Count(got, header) != 1 {
				t.Fatalf("%s: header %s repeated", st, header)
			}
			last = idx
		}
		if !strings.HasPrefix(got, HeaderScene) {
			t.Fatalf("%s: directive must start with scene header", st)
		}
	}
}

func TestCompileSlideCopyVerbatim(t *testing.T) {
	slide := sampleSlide(domain.SlideHook)
	slide.TextCopy = `He said "look", then the wall moved.`
	got, err := CompileSlide(domain.DefaultBrandProfile(), slide)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	textIdx := strings.Index(got, HeaderText)
	constraintsIdx := strings.Index(got, HeaderConstraints)
	block := got[textIdx:constraintsIdx]
	if !strings.Contains(block, slide.TextCopy) {
		t.Fatalf("text block does not contain copy verbatim: %s", block)
	}
}

func TestCompileSlideDeterministic(t *testing.T) {
	profile := domain.DefaultBrandProfile()
	slide := sampleSlide(domain.SlideBridge)
	slide.BridgeValue = "On-site access and documentation"
	first, err := CompileSlide(profile, slide)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	second, err := CompileSlide(profile, slide)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical output")
	}
	if !strings.Contains(first, "Value offered: On-site access and documentation") {
		t.Fatalf("bridge value missing: %s", first)
	}
}

func TestCompileSlideEmptyCopyKeepsShape(t *testing.T) {
	slide := sampleSlide(domain.SlideEvidence)
	slide.TextCopy = ""
	got, err := CompileSlide(domain.DefaultBrandProfile(), slide)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(got, "Content: none (no rendered text)") {
		t.Fatalf("expected empty-content marker: %s", got)
	}
	for _, header := range Headers {
		if !strings.Contains(got, header) {
			t.Fatalf("missing header %s", header)
		}
	}
}

func TestCompileSlideUnknownType(t *testing.T) {
	slide := sampleSlide(domain.SlideHook)
	slide.Type = "teaser"
	_, err := CompileSlide(domain.DefaultBrandProfile(), slide)
	if !errors.Is(err, domain.ErrUnknownSlideType) {
		t.Fatalf("expected ErrUnknownSlideType, got %v", err)
	}
}

func TestCompileSlideConstraintsUsePalette(t *testing.T) {
	profile := domain.DefaultBrandProfile()
	profile.Colors = "Ink (#111111), Paper (#FAFAFA)"
	got, err := CompileSlide(profile, sampleSlide(domain.SlideCTA))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(got, "- Brand palette dominates (Ink (#111111), Paper (#FAFAFA))") {
		t.Fatalf("palette not restated: %s", got)
	}
	if !strings.Contains(got, "- Clear call to action") {
		t.Fatalf("cta ensure list missing")
	}
	if !strings.Contains(got, "Call to action: follow") {
		t.Fatalf("cta type missing")
	}
	if !strings.Contains(got, "Format: 9:16 portrait") {
		t.Fatalf("format line missing")
	}
}
