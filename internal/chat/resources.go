// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package chat

import (
	"strings"

	"github.com/tomtom215/calmverse/internal/cache"
)

// Resource is a help resource attached to a reply.
type Resource struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Contact string `json:"contact,omitempty"`
	URL     string `json:"url,omitempty"`
}

// CrisisMessage is returned verbatim whenever a crisis keyword is found.
const CrisisMessage = "I've detected some concerning language in your message. If you're in immediate danger or having thoughts of harming yourself, please contact emergency services (911/988 in the US) or a crisis helpline:\n\n" +
	"- National Suicide Prevention Lifeline: 988 or 1-800-273-8255\n" +
	"- Crisis Text Line: Text HOME to 741741\n\n" +
	"Would you like me to provide information about mental health resources available through CalmVerse?"

// CrisisResources returns the hotlines sent with CrisisMessage.
func CrisisResources() []Resource {
	return []Resource{
		{Name: "Crisis Text Line", Type: "hotline", Contact: "Text HOME to 741741"},
		{Name: "National Suicide Prevention Lifeline", Type: "hotline", Contact: "988 or 1-800-273-8255"},
	}
}

// SuggestResources attaches the in-app library when the assistant's reply
// talks about recommendations or resources. It returns nil otherwise.
func SuggestResources(reply string) []Resource {
	lower := strings.ToLower(reply)
	if !strings.Contains(lower, "recommendations") && !strings.Contains(lower, "resources") {
		return nil
	}
	return []Resource{
		{Name: "CalmVerse Meditation Library", Type: "app_feature", URL: "/meditations"},
		{Name: "Mental Wellness Articles", Type: "app_feature", URL: "/articles"},
	}
}

// CrisisDetector flags messages containing any configured keyword.
type CrisisDetector struct {
	matcher *cache.Matcher
}

// NewCrisisDetector builds a case-insensitive detector over keywords.
func NewCrisisDetector(keywords []string) *CrisisDetector {
	return &CrisisDetector{matcher: cache.NewMatcher(keywords)}
}

// Detect returns the first keyword found in message.
func (d *CrisisDetector) Detect(message string) (string, bool) {
	return d.matcher.FirstMatch(message)
}

// topicResources maps a topic word to its curated articles and meditations.
var topicResources = []struct {
	topic     string
	resources []Resource
}{
	{"anxiety", []Resource{
		{Name: "Anxiety Coping Tools", Type: "article", URL: "https://www.calmverse.com/resources/anxiety-tools"},
		{Name: "Breathing Exercises", Type: "guided_meditation", URL: "https://www.calmverse.com/meditations/breathing"},
	}},
	{"depression", []Resource{
		{Name: "Understanding Depression", Type: "article", URL: "https://www.calmverse.com/resources/depression-guide"},
		{Name: "Uplifting Meditation", Type: "guided_meditation", URL: "https://www.calmverse.com/meditations/uplift"},
	}},
	{"stress", []Resource{
		{Name: "Stress Management", Type: "article", URL: "https://www.calmverse.com/resources/stress-management"},
		{Name: "Progressive Relaxation", Type: "guided_meditation", URL: "https://www.calmverse.com/meditations/relax"},
	}},
	{"sleep", []Resource{
		{Name: "Sleep Hygiene Tips", Type: "article", URL: "https://www.calmverse.com/resources/sleep-better"},
		{Name: "Bedtime Meditation", Type: "guided_meditation", URL: "https://www.calmverse.com/meditations/sleep"},
	}},
}

// ResourcesForTopics returns the curated resources for every topic
// mentioned in query, in a fixed topic order.
func ResourcesForTopics(query string) []Resource {
	lower := strings.ToLower(query)
	var out []Resource
	for _, tr := range topicResources {
		if strings.Contains(lower, tr.topic) {
			out = append(out, tr.resources...)
		}
	}
	return out
}
