package render

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"mom-assistant/internal/assistant"
	"mom-assistant/internal/recipe"
)

// Renderer formats results for the terminal.
type Renderer struct {
	titleStyle   lipgloss.Style
	headingStyle lipgloss.Style
	bodyStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	boxStyle     lipgloss.Style
}

func New() *Renderer {
	blue := lipgloss.Color("33")
	gray := lipgloss.Color("245")
	red := lipgloss.Color("196")

	return &Renderer{
		titleStyle: lipgloss.NewStyle().
			Foreground(blue).
			Bold(true),
		headingStyle: lipgloss.NewStyle().
			Foreground(gray).
			Bold(true),
		bodyStyle: lipgloss.NewStyle().
			PaddingLeft(2),
		errorStyle: lipgloss.NewStyle().
			Foreground(red),
		boxStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
	}
}

func (r *Renderer) section(heading, body string) string {
	if strings.TrimSpace(body) == "" {
		body = "-"
	}
	return r.headingStyle.Render(heading) + "\n" + r.bodyStyle.Render(body)
}

// Pipeline renders a translation and, when present, the parsed reply.
func (r *Renderer) Pipeline(res assistant.Result) string {
	parts := []string{
		r.titleStyle.Render("Mandarin translation"),
		r.bodyStyle.Render(res.MandarinTranslation),
	}

	switch {
	case res.ReplyErr != nil:
		parts = append(parts, r.errorStyle.Render("Reply could not be generated: "+res.ReplyErr.Error()))
	case res.Reply != nil:
		reply := res.Reply
		parts = append(parts,
			r.boxStyle.Render(strings.Join([]string{
				r.titleStyle.Render("Suggested reply"),
				r.section("Interpretation", reply.EnglishInterpretation),
				r.section("解读", reply.MandarinInterpretation),
				r.section("Reply", reply.EnglishReply),
				r.section("回复", reply.MandarinReply),
				r.section("说明", reply.MandarinExplanation),
			}, "\n\n")),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Recipe renders a recipe with numbered instructions.
func (r *Renderer) Recipe(rec recipe.Recipe) string {
	ingredients := make([]string, len(rec.Ingredients))
	for i, item := range rec.Ingredients {
		ingredients[i] = "• " + item
	}
	steps := make([]string, len(rec.Instructions))
	for i, step := range rec.Instructions {
		steps[i] = fmt.Sprintf("%d. %s", i+1, step)
	}

	return r.boxStyle.Render(strings.Join([]string{
		r.titleStyle.Render(rec.Title),
		r.section("Ingredients", strings.Join(ingredients, "\n")),
		r.section("Instructions", strings.Join(steps, "\n")),
	}, "\n\n"))
}
