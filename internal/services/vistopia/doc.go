// Package vistopia implements the gateway to the Vistopia content API.
//
// Every call goes to <base_url><endpoint> with an api_token query parameter
// and expects the envelope {"status": "success", "data": ...}. Any other
// envelope means the resource is unavailable and surfaces as
// services.ErrNotFound; network failures and non-2xx responses surface as
// services.ErrTransport; bodies that are not JSON, or whose payload misses a
// required field, surface as services.ErrDecode. The client never retries.
package vistopia
