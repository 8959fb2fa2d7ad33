package midtrans

import "github.com/daberpro/Worldpedia-Education-Backend-sub000/model"

// statusTable maps the gateway's transaction_status vocabulary onto the
// canonical enum. Values the gateway may add later fall back to pending so a
// payment is never promoted to a success state by an unknown word.
var statusTable = map[string]model.PaymentStatus{
	"settlement":     model.StatusSettlement,
	"capture":        model.StatusCapture,
	"pending":        model.StatusPending,
	"deny":           model.StatusDeny,
	"cancel":         model.StatusCancel,
	"expire":         model.StatusExpire,
	"refund":         model.StatusRefund,
	"partial_refund": model.StatusPartialRefund,
}

// MapStatus translates a gateway status report into the canonical status.
// The fraud verdict takes priority over the raw transaction status: a
// challenged payment stays pending until the risk review resolves, an
// accepted one settles.
func MapStatus(transactionStatus, fraudStatus string) model.PaymentStatus {
	switch fraudStatus {
	case "challenge":
		return model.StatusPending
	case "accept":
		return model.StatusSettlement
	}
	if s, ok := statusTable[transactionStatus]; ok {
		return s
	}
	return model.StatusPending
}
