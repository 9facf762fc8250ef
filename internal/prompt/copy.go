package prompt

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"brandstudio/internal/domain"
)

// DefaultTopic is used when a quick request omits the topic.
const DefaultTopic = "Ancient Jerusalem Discovery"

// DefaultSlideCopy returns placeholder copy for a slide type.
func DefaultSlideCopy(topic string, t domain.SlideType) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = DefaultTopic
	}
	switch t {
	case domain.SlideHook:
		return fmt.Sprintf("This discovery about %s will change everything you thought you knew.", topic)
	case domain.SlideSetup:
		return fmt.Sprintf("For centuries, scholars debated whether %s was real. The evidence was elusive, until now.", topic)
	case domain.SlideBridge:
		return fmt.Sprintf("Our members have exclusive access to documentation about %s. This is verified history.", topic)
	case domain.SlideEvidence:
		return fmt.Sprintf("The proof is undeniable. %s matches historical records exactly.", topic)
	default:
		return "Follow for more verified discoveries. The stones are speaking. Are you listening?"
	}
}

// DefaultVisualBrief returns the brief used when a quick request omits one.
func DefaultVisualBrief(topic string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = DefaultTopic
	}
	return "Documentary scene related to " + topic
}

// DefaultSlide fills a SlideSpec from a topic and type alone.
func DefaultSlide(topic string, t domain.SlideType) domain.SlideSpec {
	if strings.TrimSpace(topic) == "" {
		topic = DefaultTopic
	}
	return domain.SlideSpec{
		Index:           t.Position(),
		Type:            t,
		TextCopy:        DefaultSlideCopy(topic, t),
		VisualBrief:     DefaultVisualBrief(topic),
		EmotionalTarget: domain.DefaultEmotion(t),
		Topic:           topic,
	}
}

// DefaultStory builds a full five-slide story for a topic, overriding copy
// where a non-empty entry exists in texts.
func DefaultStory(id, topic string, texts map[domain.SlideType]string) domain.StorySpec {
	if strings.TrimSpace(topic) == "" {
		topic = DefaultTopic
	}
	story := domain.StorySpec{ID: id, Topic: topic, Slides: make([]domain.SlideSpec, 0, domain.StoryLength)}
	for _, t := range domain.SlideOrder {
		slide := DefaultSlide(topic, t)
		if text := strings.TrimSpace(texts[t]); text != "" {
			slide.TextCopy = text
		}
		story.Slides = append(story.Slides, slide)
	}
	return story
}

// SlideLabel is the display label for a slide type, e.g. "Hook" or "Cta".
func SlideLabel(t domain.SlideType) string {
	return cases.Title(language.English).String(string(t))
}
