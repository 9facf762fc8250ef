package domain

import (
	"fmt"
	"strings"
	"time"
)

// SlideType is the narrative role of a slide inside a story.
type SlideType string

const (
	SlideHook     SlideType = "hook"
	SlideSetup    SlideType = "setup"
	SlideBridge   SlideType = "bridge"
	SlideEvidence SlideType = "evidence"
	SlideCTA      SlideType = "cta"
)

// StoryLength is the fixed number of slides in a story.
const StoryLength = 5

// SlideOrder is the canonical order of slide types.
var SlideOrder = [StoryLength]SlideType{SlideHook, SlideSetup, SlideBridge, SlideEvidence, SlideCTA}

// ParseSlideType maps user input onto a known slide type. The legacy
// "tms_bridge" tag is accepted as bridge.
func ParseSlideType(raw string) (SlideType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hook":
		return SlideHook, nil
	case "setup":
		return SlideSetup, nil
	case "bridge", "tms_bridge":
		return SlideBridge, nil
	case "evidence":
		return SlideEvidence, nil
	case "cta":
		return SlideCTA, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSlideType, raw)
	}
}

// Position returns the 1-based canonical index of the slide type, or 0.
func (t SlideType) Position() int {
	for i, st := range SlideOrder {
		if st == t {
			return i + 1
		}
	}
	return 0
}

// EmotionalTarget is the feeling a slide should leave the viewer with.
type EmotionalTarget string

const (
	EmotionCuriosity    EmotionalTarget = "curiosity"
	EmotionAnticipation EmotionalTarget = "anticipation"
	EmotionTrust        EmotionalTarget = "trust"
	EmotionWonder       EmotionalTarget = "wonder"
	EmotionMotivation   EmotionalTarget = "motivation"
)

// DefaultEmotion returns the emotional target conventionally paired with a slide type.
func DefaultEmotion(t SlideType) EmotionalTarget {
	switch t {
	case SlideHook:
		return EmotionCuriosity
	case SlideSetup:
		return EmotionAnticipation
	case SlideBridge:
		return EmotionTrust
	case SlideEvidence:
		return EmotionWonder
	default:
		return EmotionMotivation
	}
}

// CTAType is the action a call-to-action slide asks for.
type CTAType string

const (
	CTAFollow  CTAType = "follow"
	CTALink    CTAType = "link"
	CTAComment CTAType = "comment"
	CTAShare   CTAType = "share"
)

// SlideSpec describes one slide to be compiled and rendered.
type SlideSpec struct {
	Index           int             `json:"index"`
	Type            SlideType       `json:"type"`
	TextCopy        string          `json:"text_copy"`
	VisualBrief     string          `json:"visual_brief"`
	EmotionalTarget EmotionalTarget `json:"emotional_target"`
	Topic           string          `json:"topic"`
	BridgeValue     string          `json:"bridge_value,omitempty"`
	CTAType         CTAType         `json:"cta_type,omitempty"`
}

// StorySpec is the input of a five-slide story run.
type StorySpec struct {
	ID     string      `json:"id"`
	Topic  string      `json:"topic"`
	Slides []SlideSpec `json:"slides"`
}

// Validate checks slide count, canonical order and index agreement.
func (s StorySpec) Validate() error {
	if len(s.Slides) != StoryLength {
		return fmt.Errorf("%w: expected %d slides, got %d", ErrInvalidStory, StoryLength, len(s.Slides))
	}
	for i, slide := range s.Slides {
		want := SlideOrder[i]
		if slide.Type != want {
			return fmt.Errorf("%w: slide %d must be %q, got %q", ErrInvalidStory, i+1, want, slide.Type)
		}
		if slide.Index != i+1 {
			return fmt.Errorf("%w: slide %q has index %d, want %d", ErrInvalidStory, slide.Type, slide.Index, i+1)
		}
	}
	return nil
}

// GeneratedSlide is a successfully rendered slide.
type GeneratedSlide struct {
	Index       int       `json:"index"`
	Type        SlideType `json:"type"`
	Image       Image     `json:"image"`
	Prompt      string    `json:"prompt"`
	GeneratedAt time.Time `json:"generated_at"`
}

// SlideError records a failed slide by index.
type SlideError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

func (e SlideError) String() string {
	return fmt.Sprintf("Slide %d: %s", e.Index, e.Message)
}

// StoryResult is the terminal outcome of a story run.
type StoryResult struct {
	StoryID      string           `json:"story_id"`
	Topic        string           `json:"topic"`
	Slides       []GeneratedSlide `json:"slides"`
	Errors       []SlideError     `json:"errors,omitempty"`
	Exports      []ExportResult   `json:"exports,omitempty"`
	ExportErrors []SlideError     `json:"export_errors,omitempty"`
	CompletedAt  time.Time        `json:"completed_at"`
}

// Partial reports whether some but not all slides were generated.
func (r StoryResult) Partial() bool {
	return len(r.Errors) > 0 && len(r.Slides) > 0
}

// ErrorFor returns the recorded error for a slide index.
func (r StoryResult) ErrorFor(index int) (SlideError, bool) {
	for _, e := range r.Errors {
		if e.Index == index {
			return e, true
		}
	}
	return SlideError{}, false
}
