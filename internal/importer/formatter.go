// Package importer turns unstructured recipe text, or a recipe web page, into
// a structured recipe with the help of a hosted model.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"easydish/internal/identity"
	"easydish/internal/llm"
	"easydish/internal/recipe"
)

// ErrFormatFailed is returned when the model call fails or its answer cannot
// be used. It only aborts the single import, never the store.
var ErrFormatFailed = errors.New("failed to process recipe text")

const systemPrompt = `You are a professional chef's assistant. Format the messy text into a clean JSON object.
1. Simplify instructions into clear, numbered steps.
2. Extract kitchen equipment ['Slow Cooker', 'Air Fryer', 'Oven', 'Wok', 'Instant Pot', 'Stovetop'] into a 'tags' array.
3. IMPORTANT: Remove any equipment names from the 'title' string.
4. If input is already formatted with specified steps do not change the steps.
5. Format the ingredients.
Format: { "title": string, "prepTime": string, "servings": string, "tags": [string], "ingredients": [{ "name": string, "amount": string, "category": string }], "steps": [string] }`

// temperature is kept low for a consistent JSON structure.
const temperature = 0.2

// Formatted is the structure the model is asked to produce.
type Formatted struct {
	Title       string              `json:"title"`
	PrepTime    string              `json:"prepTime"`
	Servings    string              `json:"servings"`
	Tags        []string            `json:"tags"`
	Ingredients []recipe.Ingredient `json:"ingredients"`
	Steps       []string            `json:"steps"`
}

// Result is a formatted recipe plus what it cost to produce.
type Result struct {
	Recipe  recipe.Recipe
	Usage   llm.Usage
	Latency time.Duration
}

// Formatter asks a TextGenerator to structure raw recipe text.
type Formatter struct {
	textGen llm.TextGenerator
	ids     identity.Generator
}

// NewFormatter creates a Formatter. A nil ids uses identity.LocalGenerator.
func NewFormatter(textGen llm.TextGenerator, ids identity.Generator) *Formatter {
	if ids == nil {
		ids = identity.LocalGenerator{}
	}
	return &Formatter{textGen: textGen, ids: ids}
}

// Format structures raw into a new recipe with a fresh local id.
func (f *Formatter) Format(ctx context.Context, raw string) (Result, error) {
	if strings.TrimSpace(raw) == "" {
		return Result{}, fmt.Errorf("%w: empty input", ErrFormatFailed)
	}

	start := time.Now()
	resp, err := f.textGen.GenerateContent(ctx, llm.Request{
		System:      systemPrompt,
		Input:       raw,
		Temperature: temperature,
		JSON:        true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrFormatFailed, err)
	}
	latency := time.Since(start)

	var out Formatted
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), &out); err != nil {
		return Result{}, fmt.Errorf("%w: failed to parse AI response: %v", ErrFormatFailed, err)
	}

	r, err := out.toRecipe(f.ids.NewID())
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrFormatFailed, err)
	}
	return Result{Recipe: r, Usage: resp.Usage, Latency: latency}, nil
}

// toRecipe applies the same title and equipment rules as manual entry, on top
// of whatever tags the model already extracted.
func (f Formatted) toRecipe(id string) (recipe.Recipe, error) {
	title, found := recipe.ExtractEquipment(f.Title, strings.Join(f.Steps, "\n"))
	tags := recipe.NewTags(f.Tags...)
	for _, tag := range found {
		tags = tags.Add(tag)
	}
	if title == "" {
		title = strings.TrimSpace(f.Title)
	}

	ingredients := make([]recipe.Ingredient, 0, len(f.Ingredients))
	for _, ing := range f.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			continue
		}
		ing.Category = ing.Category.OrOther()
		ingredients = append(ingredients, ing)
	}

	r := recipe.Recipe{
		ID:          id,
		Title:       title,
		PrepTime:    f.PrepTime,
		Servings:    f.Servings,
		Tags:        tags,
		Ingredients: ingredients,
		Steps:       f.Steps,
	}.Normalize()
	if err := r.Validate(); err != nil {
		return recipe.Recipe{}, err
	}
	return r, nil
}

// stripCodeFence removes a surrounding ```json fence some models add even in
// JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
