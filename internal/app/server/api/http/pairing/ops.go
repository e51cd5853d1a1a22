package pairing

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) qrDataOp() huma.Operation {
	return huma.Operation{
		OperationID: "pair-qr-data",
		Method:      http.MethodGet,
		Path:        "/api/pair/qr-data",
		Summary:     "Issue pairing token",
		Description: "Issues a short-lived single-use pairing token and returns the QR payload",
		Tags:        []string{"pairing"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) qrImageOp() huma.Operation {
	return huma.Operation{
		OperationID: "pair-qr-image",
		Method:      http.MethodGet,
		Path:        "/api/pair/qr-image",
		Summary:     "Issue pairing token as QR image",
		Tags:        []string{"pairing"},
		Middlewares: h.middleware,
		Responses: map[string]*huma.Response{
			"200": {
				Description: "PNG image",
				Content: map[string]*huma.MediaType{
					"image/png": {},
				},
			},
		},
	}
}

func (h *Handler) registerOp() huma.Operation {
	return huma.Operation{
		OperationID: "pair-register",
		Method:      http.MethodPost,
		Path:        "/api/pair/register",
		Summary:     "Register device",
		Description: "Exchanges a pairing token for a permanent device token",
		Tags:        []string{"pairing"},
		Middlewares: h.middleware,
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized},
	}
}
