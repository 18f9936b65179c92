package dto

// AITextRequest carries the task text for an AI feature
type AITextRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

// CategorizeResponse is the result of task categorization
type CategorizeResponse struct {
	Category string   `json:"category"`
	Quota    QuotaDTO `json:"quota"`
}

// SuggestResponse is the result of task suggestions
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
	Quota       QuotaDTO `json:"quota"`
}
