package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=interfaces.go -destination=mocks_test.go -package=processor

import (
	"context"

	"voice-bridge/internal/postcall"
	"voice-bridge/internal/store"

	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// CallCreator places calls through the carrier REST API
type CallCreator interface {
	CreateCall(params *api.CreateCallParams) (*api.ApiV2010Call, error)
}

// CallStore is the optional call log
type CallStore interface {
	CreateCall(ctx context.Context, params store.CreateCallParams) (store.Call, error)
	GetCallBySid(ctx context.Context, callSid string) (store.Call, error)
	UpdateCallStatus(ctx context.Context, callSid string, status string) error
}

// JobSubmitter queues post-call work
type JobSubmitter interface {
	Submit(ctx context.Context, job postcall.Job) error
}
