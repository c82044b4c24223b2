// Package signature verifies Svix-signed webhook deliveries.
//
// Clerk delivers webhooks through Svix. Every delivery carries three headers:
//
//	svix-id:        msg_2Lh9...           unique per message, stable across retries
//	svix-timestamp: 1700000000            unix seconds at send time
//	svix-signature: v1,<base64> v1,<b64>  one entry per active signing secret
//
// The signature is base64(HMAC-SHA256(key, "<id>.<timestamp>.<body>")) where
// key is the base64 payload of the "whsec_" secret. The body is the raw bytes
// received on the wire; it is never re-serialized before verification.
//
// Deliveries whose timestamp is further than the tolerance (default five
// minutes) from the local clock are rejected to bound replay.
package signature
