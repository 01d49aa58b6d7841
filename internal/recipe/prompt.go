package recipe

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Category classifies the user's mood message into a dish category.
type Category string

// Dish categories derived from keywords in the mood message.
const (
	CategoryMeal    Category = "Japanese meals"
	CategoryDessert Category = "Japanese desserts"
	CategoryDrink   Category = "Japanese drinks"
)

var (
	dessertKeywords = []string{"スイーツ", "デザート"}
	drinkKeywords   = []string{"ドリンク", "飲み物"}
)

// triviaHeaders are the candidate headers for the closing trivia section of a
// detail recipe. One is chosen at random per prompt.
var triviaHeaders = []string{
	"「料理の小ネタ」",
	"「知ってると話したくなる話」",
	"「この料理、実は…」",
	"「ちょこっと豆知識」",
	"「豆メモ」",
}

// Classify returns the dish category for a mood message by keyword match.
// The default category is meals.
func Classify(mood string) Category {
	for _, kw := range dessertKeywords {
		if strings.Contains(mood, kw) {
			return CategoryDessert
		}
	}
	for _, kw := range drinkKeywords {
		if strings.Contains(mood, kw) {
			return CategoryDrink
		}
	}
	return CategoryMeal
}

// SuggestionPrompt renders the instruction asking for exactly five candidate
// suggestions matching the user's mood. The constraints live in the prompt
// text; nothing is enforced programmatically.
func SuggestionPrompt(mood string) string {
	category := Classify(mood)

	return fmt.Sprintf(`The user says: "%s"
Please suggest 5 %s based on this mood.
Each suggestion must include:
- title
- a brief reason why it fits the mood
- one overall summary sentence (1 short line) about the general theme of the suggestions, starting with "%s", such as "%sこれらのレシピは暑い日にさっぱり食べられるものです。"

Respond only in Japanese.
Avoid generic items like coffee, udon, or somen unless user asked.
Avoid drinks or desserts unless requested.
Use common ingredients and simple ideas, but make at least one feel new or clever.`,
		mood, category, SummaryMarker, SummaryMarker)
}

// DetailPrompt renders the instruction asking for one complete recipe for the
// chosen title. The title is embedded verbatim.
func DetailPrompt(title string) string {
	header := triviaHeaders[rand.IntN(len(triviaHeaders))]

	return fmt.Sprintf(`You are a Japanese cooking expert. Please write a full recipe for the following item.

【Dish】%s

Language rules:
- If the title is in Japanese, respond entirely in Japanese.
- If the title is in English, respond entirely in English.

Recipe should include:

1. How many servings it makes (e.g., 2〜3人前)
2. List of ingredients using simple units:
   - Use friendly measurements like "a little", "1 handful", "1 piece"
   - Avoid using grams (g), milliliters (ml), or complex cooking terms
3. Step-by-step instructions (max 7 steps):
   - Add brief explanations **only where it's especially helpful or interesting**
     (e.g., "Start with skin side down to make it crispy")
   - If the recipe allows shortcuts (e.g., pre-made tempura for tendon), include that as an option
4. At the end, include a fun or useful fact about the dish
   - Make it light and friendly
   - Start with this header: %s

This rule applies to:
- Meals
- Desserts (スイーツ / sweets)
- Drinks (ドリンク / beverages)

Be concise, clear, and beginner-friendly.`, title, header)
}
