package i18n

var ALLOW_LANG = map[string]bool{
	"en":    true,
	"zh-CN": true,
}

const DEFAULT_LANG = "en"

const (
	ERROR_INTERNAL          = "error.internal"
	ERROR_NOT_FOUND         = "error.notfound"
	ERROR_INVALIDARGUMENT   = "error.invalidargument"
	ERROR_TOO_MANY_REQUESTS = "error.tooManyRequests"

	ERROR_SESSION_NOT_FOUND = "error.session.notfound"
	ERROR_FETCH_FAILED      = "error.fetch.failed"
	ERROR_CONTENT_EMPTY     = "error.content.empty"
	ERROR_EXTRACTION_FAILED = "error.extraction.failed"
	ERROR_ALREADY_SAVED     = "error.already_saved"
	ERROR_SEARCH_FAILED     = "error.search.failed"

	MESSAGE_INGEST_STARTED   = "message.ingest.started"
	MESSAGE_ALREADY_INGESTED = "message.ingest.already"
)
