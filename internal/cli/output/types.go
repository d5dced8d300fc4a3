package output

// AuditOutput is the JSON document produced by the audit command.
type AuditOutput struct {
	RunID       string       `json:"run_id,omitempty"`
	Environment string       `json:"environment"`
	Models      []AuditModel `json:"models"`
	Summary     AuditSummary `json:"summary"`
}

// AuditModel lists the findings for one model.
type AuditModel struct {
	Name     string         `json:"name"`
	Table    string         `json:"table"`
	Findings []AuditFinding `json:"findings"`
}

// AuditFinding is one offending column.
type AuditFinding struct {
	Column           string `json:"column"`
	RuleID           string `json:"rule_id"`
	Severity         string `json:"severity"`
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url,omitempty"`
}

// AuditSummary totals an audit.
type AuditSummary struct {
	ModelsAudited    int `json:"models_audited"`
	ModelsWithIssues int `json:"models_with_issues"`
	Findings         int `json:"findings"`
	Errors           int `json:"errors"`
	Warnings         int `json:"warnings"`
	Info             int `json:"info"`
	Hints            int `json:"hints"`
}

// HistoryOutput is the JSON document produced by the history command.
type HistoryOutput struct {
	Runs []HistoryRun `json:"runs"`
}

// HistoryRun is one recorded audit run.
type HistoryRun struct {
	ID           string           `json:"id"`
	Environment  string           `json:"environment"`
	StartedAt    string           `json:"started_at"`
	ModelCount   int              `json:"model_count"`
	FindingCount int              `json:"finding_count"`
	Findings     []HistoryFinding `json:"findings,omitempty"`
}

// HistoryFinding is one finding of a recorded run.
type HistoryFinding struct {
	RuleID   string `json:"rule_id"`
	Model    string `json:"model"`
	Column   string `json:"column"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// RuleOutput describes one rule for the rules command.
type RuleOutput struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Group       string   `json:"group"`
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	ConfigKeys  []string `json:"config_keys,omitempty"`
	Rationale   string   `json:"rationale,omitempty"`
	BadExample  string   `json:"bad_example,omitempty"`
	GoodExample string   `json:"good_example,omitempty"`
	Fix         string   `json:"fix,omitempty"`
	DocsURL     string   `json:"docs_url,omitempty"`
}
