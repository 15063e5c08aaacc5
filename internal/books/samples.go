// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package books

import "strings"

var sampleBooks = []Book{
	{1, "The Alchemist", "Paulo Coelho", "A story about following your dreams", "https://via.placeholder.com/300x450?text=The+Alchemist"},
	{2, "Atomic Habits", "James Clear", "Tiny changes, remarkable results", "https://via.placeholder.com/300x450?text=Atomic+Habits"},
	{3, "Thinking, Fast and Slow", "Daniel Kahneman", "How we make decisions", "https://via.placeholder.com/300x450?text=Thinking+Fast+and+Slow"},
	{4, "Man's Search for Meaning", "Viktor Frankl", "Finding purpose in suffering", "https://via.placeholder.com/300x450?text=Man's+Search+for+Meaning"},
	{5, "Mindfulness in Plain English", "Bhante Gunaratana", "A guide to meditation", "https://via.placeholder.com/300x450?text=Mindfulness+in+Plain+English"},
	{6, "The Power of Now", "Eckhart Tolle", "Living in the present moment", "https://via.placeholder.com/300x450?text=The+Power+of+Now"},
	{7, "Feeling Good", "David D. Burns", "The new mood therapy", "https://via.placeholder.com/300x450?text=Feeling+Good"},
	{8, "The Body Keeps the Score", "Bessel van der Kolk", "Brain, mind, and body in healing trauma", "https://via.placeholder.com/300x450?text=The+Body+Keeps+the+Score"},
}

const placeholderCover = "https://5.imimg.com/data5/IU/SQ/GD/SELLER-43618059/book-cover-page-design-1000x1000.jpg"

// fallbackTitles are served when no similarity data exists for a book.
var fallbackTitles = []string{
	"The Four Agreements",
	"Daring Greatly",
	"The Untethered Soul",
	"The Happiness Trap",
	"Wherever You Go, There You Are",
	"10% Happier",
	"The Gifts of Imperfection",
	"Why Has Nobody Told Me This Before?",
}

// generatedImageURL builds a text placeholder for books stored without art.
func generatedImageURL(title string) string {
	return "https://via.placeholder.com/300x450?text=" + strings.ReplaceAll(title, " ", "+")
}
