// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package chat

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/calmverse/internal/llm"
	"github.com/tomtom215/calmverse/internal/metrics"
)

// Tool names offered to the model.
const (
	ToolGeneralAdvice   = "general_mental_health_advice"
	ToolResourceLookup  = "resource_recommendations"
	ToolCrisisDetection = "crisis_detection"
)

var queryParameters = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"query": map[string]interface{}{
			"type":        "string",
			"description": "The user's question or message",
		},
	},
	"required": []string{"query"},
}

// toolSpecs lists the tools in the order they are offered.
func toolSpecs() []llm.Tool {
	return []llm.Tool{
		{
			Name:        ToolGeneralAdvice,
			Description: "Useful for providing general mental health advice and coping strategies",
			Parameters:  queryParameters,
		},
		{
			Name:        ToolResourceLookup,
			Description: "Useful for recommending specific CalmVerse resources like articles, guided meditations, etc.",
			Parameters:  queryParameters,
		},
		{
			Name:        ToolCrisisDetection,
			Description: "Checks if the user message indicates a crisis situation requiring immediate attention",
			Parameters:  queryParameters,
		},
	}
}

// toolQuery extracts the "query" argument. Models occasionally send a
// bare string instead of an object; that string is used as-is.
func toolQuery(arguments string) string {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err == nil && args.Query != "" {
		return args.Query
	}
	return strings.Trim(strings.TrimSpace(arguments), `"`)
}

func generalAdvice(query string) string {
	return fmt.Sprintf("Here are some general strategies that might help with %s: "+
		"Practice mindfulness, maintain regular physical activity, ensure proper sleep, "+
		"connect with supportive people, and consider journaling your thoughts.", query)
}

func resourceRecommendations(query string) string {
	var b strings.Builder
	b.WriteString("Based on your question, you might find these resources helpful:\n\n")
	found := ResourcesForTopics(query)
	if len(found) == 0 {
		b.WriteString("- General Wellness Guide\n- Daily Reflection Practice\n")
		return b.String()
	}
	for _, r := range found {
		fmt.Fprintf(&b, "- %s (%s)\n", r.Name, r.Type)
	}
	return b.String()
}

// runTool executes one tool call and returns its textual result.
func (s *Service) runTool(call llm.ToolCall) string {
	metrics.LLMToolCalls.WithLabelValues(call.Name).Inc()
	query := toolQuery(call.Arguments)

	switch call.Name {
	case ToolGeneralAdvice:
		return generalAdvice(query)
	case ToolResourceLookup:
		return resourceRecommendations(query)
	case ToolCrisisDetection:
		if _, ok := s.detector.Detect(query); ok {
			return CrisisMessage
		}
		return ""
	default:
		return "Unknown tool: " + call.Name
	}
}
