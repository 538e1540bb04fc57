package models

// ImportResult is the structured outcome of importing one remote product.
// Warnings collect non-fatal aspect-step failures; a result can be
// successful and still carry warnings.
type ImportResult struct {
	Success   bool     `json:"success"`
	ProductID int64    `json:"product_id,omitempty"`
	Message   string   `json:"message"`
	StepLog   []string `json:"step_log,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ImportSummary aggregates the results of a multi-product import for the
// admin API response.
type ImportSummary struct {
	Success  int                  `json:"success"`
	Errors   int                  `json:"errors"`
	Messages []string             `json:"messages"`
	Results  map[int]ImportResult `json:"results"`
}
