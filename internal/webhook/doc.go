// Package webhook implements the Clerk webhook endpoint that keeps the local
// user store in sync with the identity provider.
//
// # Request Flow
//
//  1. Signing secret checked (500 "Configuration error" if unset)
//  2. svix-id, svix-signature and svix-timestamp extracted (400 if any is missing)
//  3. Body read under max_body_size (413) and parsed as JSON (400)
//  4. Svix signature verified over the raw body bytes (400)
//  5. Event dispatched on its type; user.created is synced to the user store
//     (400 on missing id/email, 500 if the sync fails); other types are logged
//     and acknowledged
//  6. 200 "Webhook processed successfully"
//
// Responses are short text/plain messages. Verification failures never
// describe which check failed; the reason is only logged.
//
// Redelivery is the sender's job: any non-2xx answer makes Svix retry later.
//
// # Example Usage
//
//	cfg := webhook.Config{
//		Listen: "127.0.0.1:8081",
//		Path:   "/clerk-webhook",
//		Secret: os.Getenv("CLERK_WEBHOOK_SECRET"),
//	}
//
//	server := webhook.New(cfg, signature.NewSvixVerifier(0), store, logger)
//	if err := server.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
package webhook
