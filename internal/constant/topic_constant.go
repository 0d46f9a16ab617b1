package constant

// EmbedDocumentTopic is the in-process queue topic for embedding jobs.
const EmbedDocumentTopic = "document.embed.v1"
