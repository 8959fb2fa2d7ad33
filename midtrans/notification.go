package midtrans

// Notification is the body of a gateway webhook delivery. It carries the same
// status fields the polling endpoint returns plus the signature the gateway
// computed over order id, status code, gross amount and the server key.
type Notification struct {
	StatusResponse
	SignatureKey string `json:"signature_key"`
}

// Verify checks the notification's authenticity. Callers must treat a payload
// that fails this check exactly like one with no signature at all.
func (n *Notification) Verify(serverKey string) bool {
	return VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey, n.SignatureKey)
}
