package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
)

// Wire-level query types in the response envelope.
const (
	QueryTypeSql            = "sql_query"
	QueryTypeDocumentSearch = "document_search"
	QueryTypeCustomer       = "customer_service"
	QueryTypeClarification  = "clarification_needed"
	QueryTypeUnsupported    = "unsupported"
	QueryTypeConfirmation   = "query_confirmation"
)

// Session titles are truncated to this many characters, plus "..." when cut.
const SessionTitleMaxLen = 50

const DefaultSessionTitle = "New Chat"

// UnsupportedResponseTemplate lists the three supported categories verbatim.
const UnsupportedResponseTemplate = "I'm sorry, I can't help with that. I can answer questions about your order data, " +
	"search your documents, or handle customer service inquiries (technical support, billing, general questions)."

// RephraseResponseTemplate is returned when a user rejects a suggested rewrite.
const RephraseResponseTemplate = "No problem. Please rephrase your search and I'll try again."

// NoResultsTemplate is the fixed apology for an empty document search; %s is the cleaned topic.
const NoResultsTemplate = "Sorry, I couldn't find any documents about \"%s\". Try different keywords or check that the documents have been uploaded."
