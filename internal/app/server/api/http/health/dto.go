package health

import "storysync/internal/domain/sync"

// Input represents the input for health check endpoint
type Input struct{}

// Output represents the output for health check endpoint
type Output struct {
	Body Response
}

// Response represents the health check response
type Response struct {
	Status            string         `json:"status" example:"healthy" doc:"Health status of the service"`
	Timestamp         sync.Timestamp `json:"timestamp" doc:"Server time"`
	DatabaseConnected bool           `json:"database_connected" doc:"Whether the store answered a ping"`
	Version           string         `json:"version" example:"1.0.0"`
}
