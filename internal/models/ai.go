package models

type AiGenerateRequest struct {
	Prompt      string   `json:"prompt"`
	Length      *int     `json:"length"`
	Temperature *float64 `json:"temperature"`
}
