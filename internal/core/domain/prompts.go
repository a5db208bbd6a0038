package domain

// DefaultAnswerSystemPrompt instructs the oracle to answer from retrieved context.
const DefaultAnswerSystemPrompt = "You are an expert assistant for the user's documents. " +
	"Answer the user's question using only the information in the context below. " +
	"Be comprehensive: give a brief definition or explanation, an example if one is present, " +
	"and list the key points. If there are code snippets in the context, include them in your answer. " +
	"Only reply 'I couldn't find the answer in your documents.' if the context truly does not contain the answer."

// DefaultSummariseSystemPrompt instructs the oracle to summarise one document.
const DefaultSummariseSystemPrompt = "Summarize and explain the following document using only the provided context. " +
	"If the context is too long, focus on the main ideas and key points."

// NeutralLanguageInstruction is used when no language cue is detected.
const NeutralLanguageInstruction = "Answer in the same language as the question."
