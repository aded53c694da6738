package ai

// PROMPT_RAG_ANSWER_EN forces the model to stay inside the retrieved
// context. The refusal sentence is part of the product contract: it is
// what keeps answers grounded instead of hallucinated.
const PROMPT_RAG_ANSWER_EN = `You are an expert assistant. Answer the user's question based ONLY on the following context.
If the information is not in the context, say "I cannot answer that based on the provided website content."

CONTEXT:
{context}

QUESTION:
{question}`

// PROMPT_SUMMARY_QUERY_EN is the broad retrieval query used by the
// one-shot summarization path. It casts a wider net than a chat question.
const PROMPT_SUMMARY_QUERY_EN = `main topics, key points, conclusions`

// PROMPT_EXTRACT_EN primes the structured-extraction call.
const PROMPT_EXTRACT_EN = `You are a precise information extraction engine. Extract the requested fields from the provided web page content. Only use information present in the content; leave fields empty when the page does not mention them.`

// ContextSeparator joins retrieved chunks into one visible context block.
const ContextSeparator = "\n\n---\n\n"

// NoRelevantContextMessage is returned without a model call when retrieval
// finds nothing, keeping the failure mode deterministic and free.
const NoRelevantContextMessage = "I couldn't find any relevant information on the ingested website to answer your question."
