package extract

import (
	"time"
)

// buildPrompt constructs the system instructions for one extraction call.
// The asOf date resolves relative or unstated dates, and the amount rule
// pins the minor-unit conversion on the model side so the response is
// already integer paise.
func buildPrompt(asOf time.Time) string {
	return "You are an expense extraction service for a personal-finance application.\n\n" +
		"Task:\n" +
		"- The user message describes one or more expenses in natural language.\n" +
		"- Parse EVERY expense mentioned and output STRICT JSON only\n" +
		"  (no comments, no trailing commas, no extra text).\n\n" +
		"Output exactly one JSON object of the form:\n" +
		"{ \"transactions\": [ { \"date\": ..., \"amount\": ..., \"category\": ..., \"description\": ... } ] }\n\n" +
		"Each transaction object must have these fields:\n" +
		"- \"date\": string, ISO format \"YYYY-MM-DD\". If the expense does not state a date,\n" +
		"  use " + asOf.UTC().Format("2006-01-02") + ". Resolve relative dates (\"yesterday\", \"last friday\")\n" +
		"  against that same date.\n" +
		"- \"amount\": integer, the amount in paise. Convert rupee amounts by multiplying\n" +
		"  by 100 and rounding to the nearest integer (e.g. 500 rupees -> 50000).\n" +
		"- \"category\": a single lowercase word classifying the expense\n" +
		"  (e.g. food, travel, rent, entertainment).\n" +
		"- \"description\": a concise, short description of the item.\n\n" +
		"If the input contains NO identifiable expense information, do not invent a\n" +
		"transaction. Instead output exactly:\n" +
		"{ \"refusal\": \"<one short sentence explaining why>\" }\n\n" +
		"Return ONLY valid raw JSON.\n" +
		"Do NOT wrap the response in code fences.\n" +
		"Do NOT use ```json or any Markdown.\n" +
		"Output must begin with \"{\" and end with \"}\".\n"
}
