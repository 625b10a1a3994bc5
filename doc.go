// Package mailauth implements passwordless email-OTP authentication and
// API-credential issuance for the Senti-Vox analyzer platform.
//
// The engine owns the pieces of the login/registration flow that carry
// real invariants: one-time passcode issuance with single-use atomic
// consumption, per-email throttling of the mail channel, and minting of
// globally unique long-lived API keys. Durable account storage and
// outbound mail delivery are external collaborators supplied through the
// [UserStore] and [MailDispatcher] interfaces; reference adapters live in
// store/redisstore and mail/smtpmail.
//
// Construct an [Engine] through the [Builder]:
//
//	engine, err := mailauth.New().
//		WithUserStore(users).
//		WithMailDispatcher(mailer).
//		Build()
//
// The engine exposes the three transport-agnostic operations
// [Engine.SendOTP], [Engine.VerifyOTP] and [Engine.Register], plus a
// per-session [Flow] state machine that sequences them and enforces the
// failed-verification attempt cap server-side.
//
// All shared mutable state (pending OTPs, rate-limit counters) is held
// in-process behind the engine's own locks; this is a deliberate
// single-process design, not an oversight. Nothing in the engine blocks
// on network I/O while holding a lock.
package mailauth
