package llm

import (
	"fmt"
	"strings"
)

// MaxDependencyDocs caps the dependency texts placed in one prompt.
const MaxDependencyDocs = 2

// SystemPrompt instructs the model to emit a NumPy-style docstring body.
const SystemPrompt = `You are a professional Python documentation generator.
Your task is to generate a NumPy-style docstring BODY for the provided code.

STRICT RULES:
- Return ONLY plain text.
- DO NOT use markdown code blocks (` + "```" + `).
- DO NOT repeat the function signature.
- Start directly with a short summary sentence.
- Follow NumPy format EXACTLY.

Format:
<Short summary sentence>

Parameters
----------
name : type
    Description

Returns
-------
type
    Description
`

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildMessages assembles the chat prompt for one symbol. At most
// MaxDependencyDocs dependency texts are included.
func BuildMessages(code string, deps []string) []Message {
	var user strings.Builder
	if len(deps) > MaxDependencyDocs {
		deps = deps[:MaxDependencyDocs]
	}
	if len(deps) > 0 {
		user.WriteString("Context dependencies:\n")
		user.WriteString(strings.Join(deps, "\n\n"))
		user.WriteString("\n\n")
	}
	user.WriteString("Python code to document:\n")
	user.WriteString(code)
	user.WriteString("\n\nGenerate ONLY the docstring body now:")

	return []Message{
		{Role: "system", Content: SystemPrompt},
		{Role: "user", Content: strings.TrimSpace(user.String())},
	}
}

// CleanOutput strips a surrounding markdown fence and any triple quotes
// from raw model output.
func CleanOutput(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		lines = lines[1:]
		if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
			lines = lines[:len(lines)-1]
		}
		text = strings.Join(lines, "\n")
	}
	text = strings.ReplaceAll(text, `"""`, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text)
}

// LooksLikeNumPy reports whether doc carries a NumPy Parameters or Returns section.
func LooksLikeNumPy(doc string) bool {
	if doc == "" {
		return false
	}
	return strings.Contains(doc, "Parameters") || strings.Contains(doc, "Returns")
}

// ValidateDoc rejects text that cannot serve as a docstring body.
func ValidateDoc(doc string, requireNumPy bool) error {
	if strings.TrimSpace(doc) == "" {
		return ErrEmptyOutput
	}
	if requireNumPy && !LooksLikeNumPy(doc) {
		return fmt.Errorf("documentation has no Parameters or Returns section")
	}
	return nil
}
