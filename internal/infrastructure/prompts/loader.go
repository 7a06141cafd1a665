package prompts

import (
	_ "embed"
)

//go:embed hybrid_system.txt
var HybridSystemPrompt string

//go:embed retry_system.txt
var RetrySystemPrompt string

//go:embed prose_template.txt
var ProseTemplate string

//go:embed actions_schema.json
var ActionsSchema string
