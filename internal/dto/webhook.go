package dto

import "encoding/json"

// WebhookPayload is the typed form of an EduLegit callback delivery.
type WebhookPayload struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
	Signature string          `json:"signature"`
}

// EventTaskUserSync is the only inbound event type the bridge recognizes.
// Unknown events are ignored for forward compatibility.
const EventTaskUserSync = "taskUser.sync"

// TaskUserSyncData carries the sparse field delta of a taskUser.sync event.
// Nil pointers mean "leave the stored value untouched".
type TaskUserSyncData struct {
	ExternalID           *int64   `json:"externalId"`
	Title                *string  `json:"title"`
	Content              *string  `json:"content"`
	URL                  *string  `json:"url"`
	AuthKey              *string  `json:"authKey"`
	Score                *float64 `json:"score"`
	Plagiarism           *float64 `json:"plagiarism"`
	AIAverageProbability *float64 `json:"aiAverageProbability"`
	AIProbability        *float64 `json:"aiProbability"`
	LoginTimeToken       *string  `json:"loginTimeToken"`
}
