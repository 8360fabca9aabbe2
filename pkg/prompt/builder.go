package prompt

import "strings"

const retrievedSeparator = "\n\n---\n\n"

// Turn is one prior utterance carried into a chat prompt.
type Turn struct {
	Role    string
	Content string
}

// BuildSummary asks for a structured, student-facing markdown summary of
// the full document text.
func BuildSummary(text, language string) string {
	var sb strings.Builder
	sb.WriteString("You are an educational content designer. Produce a professional summary of the ")
	sb.WriteString("text below, written entirely in " + language + ", formatted as a structured lesson page.\n\n")
	sb.WriteString("Instructions:\n")
	sb.WriteString("1. Use full Markdown: a single `#` title, `##` section headings, short paragraphs (max 4 lines), bullet and numbered lists, **bold** for key terms.\n")
	sb.WriteString("2. Open with a short section titled with the local equivalent of \"Quick Summary\" covering the main idea.\n")
	sb.WriteString("3. Organize the rest of the content into clearly separated sections.\n")
	sb.WriteString("4. Close with a `## Q&A` section containing 3 to 7 practice questions.\n")
	sb.WriteString("5. Keep the tone instructional and simple; write nothing outside the summary itself.\n\n")
	sb.WriteString("Text to summarize:\n")
	sb.WriteString(text)
	return sb.String()
}

// BuildLesson asks for an interactive lesson grounded in the document,
// optionally enriched with retrieved passages.
func BuildLesson(coreText string, retrieved []string, language string) string {
	var sb strings.Builder
	sb.WriteString("You are a teacher and instructional designer writing in " + language + ". ")
	sb.WriteString("Produce an interactive, well-organized lesson based on the attached text, in Markdown with clear headings (#, ##) and bullet lists where useful.\n\n")
	sb.WriteString("Detailed instructions:\n")
	sb.WriteString("1) Start with a clear, concise title.\n")
	sb.WriteString("2) Add a learning-objectives section (3 points at most).\n")
	sb.WriteString("3) Explain the main idea in 3-6 short paragraphs (max 3 sentences each).\n")
	sb.WriteString("4) Give one simplified step-by-step worked example.\n")
	sb.WriteString("5) Include a lessons-learned section with 3 points.\n")
	sb.WriteString("6) Add an exercises section with 4 varied questions, then a separate short answers section.\n")
	sb.WriteString("7) If retrieved passages are present, add a small references note with the relevant excerpts.\n\n")
	sb.WriteString("## Core text:\n")
	sb.WriteString(coreText)
	sb.WriteString("\n\n## Retrieved passages (if any):\n")
	sb.WriteString(strings.Join(retrieved, retrievedSeparator))
	sb.WriteString("\n\nWrite the lesson now in the requested order, focused on simplicity and clarity for students.")
	return sb.String()
}

// BuildChat asks for a conversational answer grounded in whatever document
// context is available. Short documents ride along in full; longer ones
// are represented only by their retrieved passages. Prior turns carry the
// conversation so follow-up questions resolve their references.
func BuildChat(query, coreText string, retrieved []string, history []Turn, language string) string {
	var contextParts []string
	if len(retrieved) > 0 {
		contextParts = append(contextParts, "## Passages from the document:\n"+strings.Join(retrieved, retrievedSeparator))
	}
	if coreText != "" && len([]rune(coreText)) < 3000 {
		contextParts = append(contextParts, "## Full text:\n"+coreText)
	}
	if len(history) > 0 {
		var hb strings.Builder
		hb.WriteString("## Conversation so far:\n")
		for _, turn := range history {
			hb.WriteString(turn.Role)
			hb.WriteString(": ")
			hb.WriteString(turn.Content)
			hb.WriteString("\n")
		}
		contextParts = append(contextParts, strings.TrimRight(hb.String(), "\n"))
	}

	contextBlock := strings.Join(contextParts, "\n\n")
	if contextBlock == "" {
		contextBlock = "No document context is available."
	}

	var sb strings.Builder
	sb.WriteString("You are an assistant helping students understand an uploaded document. ")
	sb.WriteString("Answer in " + language + ", clearly and helpfully. ")
	sb.WriteString("Use only the context below; if the answer is not in it, say so explicitly.\n\n")
	sb.WriteString(contextBlock)
	sb.WriteString("\n\nThe user asks: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAnswer the question based on the context above.")
	return sb.String()
}
