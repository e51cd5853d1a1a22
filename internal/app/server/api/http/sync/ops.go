package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// пакет из тысячи изменений с полными снимками не влезает в лимит huma по умолчанию
const maxPushBodyBytes = 32 << 20

var bearer = []map[string][]string{{"bearer": {}}}

func (h *Handler) pullOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-pull",
		Method:      http.MethodPost,
		Path:        "/api/sync/pull",
		Summary:     "Pull changes",
		Description: "Returns entity changes after since_timestamp; without it every entity is returned",
		Tags:        []string{"sync"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) pushOp() huma.Operation {
	return huma.Operation{
		OperationID:  "sync-push",
		Method:       http.MethodPost,
		Path:         "/api/sync/push",
		Summary:      "Push changes",
		Description:  "Applies a batch of changes with optimistic concurrency and reports conflicts",
		Tags:         []string{"sync"},
		Security:     bearer,
		MaxBodyBytes: maxPushBodyBytes,
		Middlewares:  h.middleware,
		Errors:       []int{http.StatusUnauthorized, http.StatusRequestEntityTooLarge},
	}
}

func (h *Handler) statusOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-status",
		Method:      http.MethodGet,
		Path:        "/api/sync/status",
		Summary:     "Sync status",
		Description: "Returns the device checkpoint and the number of changes waiting for it",
		Tags:        []string{"sync"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}
