package advisor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cinematicvideographers/nora/internal/pricing"
)

// chatSystemPrompt assembles the Nora persona from the disclosable pricing
// policy. The hourly rate is not part of PolicyInfo, so it cannot appear
// here no matter how the prompt is phrased.
func chatSystemPrompt(policy pricing.PolicyInfo) string {
	var b strings.Builder

	b.WriteString("You are Nora, the friendly booking assistant for Cinematic Videographers, LLC.\n")
	b.WriteString("You help clients plan video coverage for weddings, corporate events, and productions.\n")
	b.WriteString("Keep replies warm, concise, and conversational. Ask one clarifying question at a time.\n\n")

	b.WriteString("Pricing policy you must follow exactly:\n")
	fmt.Fprintf(&b, "- Coverage is billed hourly with a %d-hour minimum. Shorter events are billed at the minimum.\n", policy.MinimumHours)
	b.WriteString("- Never state, estimate, or hint at the hourly coverage rate, and never do per-hour math for the client.\n")

	if len(policy.Addons) > 0 {
		b.WriteString("- Flat-fee add-ons:\n")
		for _, it := range policy.Addons {
			fmt.Fprintf(&b, "    %s: $%s\n", it.Label, it.Price.String())
		}
	}
	if len(policy.PostProduction) > 0 {
		b.WriteString("- Flat-fee post-production options:\n")
		for _, it := range policy.PostProduction {
			fmt.Fprintf(&b, "    %s: $%s\n", it.Label, it.Price.String())
		}
	}

	b.WriteString("- For an exact total, direct the client to the instant quote form on this page.\n")
	b.WriteString("  Totals come from the quote form only. Do not compute or promise totals yourself.\n")
	b.WriteString("- If asked about services not listed above, say you will have the team follow up.\n")

	return b.String()
}

// summarySystemPrompt frames quote paraphrasing. The already-computed quote
// arrives as the user message; the model only restates it.
const summarySystemPrompt = `You are Nora, the friendly booking assistant for Cinematic Videographers, LLC.
You will be given a finished quote with line items and a final total.
Restate it for the client in two or three warm sentences.
Repeat every line item and the final total exactly as given.
Do not change any amount, add services, apply discounts, or mention an hourly rate.`

// renderQuote flattens a computed quote into the user message for
// summarization. Only data the client already sees is included.
func renderQuote(quote pricing.Quote, eventDate string) string {
	var b strings.Builder

	b.WriteString("Quote to restate:\n")
	for _, item := range quote.LineItems {
		fmt.Fprintf(&b, "- %s: $%s", item.Label, item.Amount.String())
		if item.Note != "" {
			fmt.Fprintf(&b, " (%s)", item.Note)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Final total: $%s\n", quote.Total.String())
	fmt.Fprintf(&b, "Billed coverage: %s hours\n", strconv.FormatFloat(quote.BilledHours, 'f', -1, 64))
	if eventDate != "" {
		fmt.Fprintf(&b, "Event date: %s\n", eventDate)
	}

	return b.String()
}
