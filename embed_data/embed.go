package embed_data

import _ "embed"

//go:embed models_details/model_details.json
var ModelDetails []byte

//go:embed prompts/markdown_success.txt
var MarkdownSuccessTask string

//go:embed prompts/markdown_error.txt
var MarkdownErrorTask string

//go:embed prompts/html_success.txt
var HTMLSuccessTask string

//go:embed prompts/html_error.txt
var HTMLErrorTask string

//go:embed templates/report.html.tmpl
var HTMLReportTemplate string
