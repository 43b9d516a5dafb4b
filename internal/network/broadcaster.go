// Package network carries the monitoring subsystem's single outbound
// side-effect: asking peers for their current chain tip.
package network

// TipRequester is the corrective-action sink used when an eclipse is
// suspected. The request is fire-and-forget; no response is awaited.
//
// Deeper recovery policy (full history vs headers only, retry behavior)
// lives behind this interface and is deliberately not part of the monitors.
type TipRequester interface {
	RequestTipFromAllPeers()
}
