package llm

import (
	"context"
	"fmt"
	"strings"
)

// ragSystemPrompt constrains generation to the supplied context. The
// product answers in French, so the instructions are kept in French.
const ragSystemPrompt = `Tu es un assistant documentaire pour une entreprise SaaS multi-tenant.

RÈGLES STRICTES:
1. Réponds UNIQUEMENT en te basant sur les documents fournis
2. Si l'information n'est PAS dans les documents, dis clairement "Je ne trouve pas cette information dans vos documents"
3. Ne jamais inventer ou supposer des informations
4. Cite toujours la source (Document 1, Document 2, etc.)
5. Sois concis et précis
6. Réponds en français`

// BuildRAGAnswer assembles the fixed retrieval-augmented prompt from the
// question and the ordered context chunks, then invokes generation.
// It returns an empty string when there is no context or no output.
func BuildRAGAnswer(ctx context.Context, p Provider, question string, contextChunks []string) (string, error) {
	if len(contextChunks) == 0 {
		return "", nil
	}

	labeled := make([]string, len(contextChunks))
	for i, chunk := range contextChunks {
		labeled[i] = fmt.Sprintf("Document %d:\n%s", i+1, chunk)
	}

	prompt := fmt.Sprintf(`Contexte (documents disponibles):
%s

Question: %s

Réponds à la question en te basant STRICTEMENT sur les documents ci-dessus.`,
		strings.Join(labeled, "\n\n---\n\n"), question)

	return p.Generate(ctx, prompt, ragSystemPrompt)
}
