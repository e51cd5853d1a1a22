package sync

import "storysync/internal/domain/sync"

type pullInput struct {
	Body sync.PullRequest `required:"false"`
}

type pullOutput struct {
	Body sync.PullResponse
}

type pushInput struct {
	Body pushBody
}

type pushBody struct {
	Changes sync.Changes `json:"changes"`
}

type PushResponse struct {
	sync.PushResult
	Message string `json:"message" example:"Sync completed"`
}

type pushOutput struct {
	Body PushResponse
}

type statusInput struct{}

type statusOutput struct {
	Body sync.StatusResponse
}
