package audit

// Action is the closed enumeration of auditable events. Adding a tag
// here is an API change for everything that queries the log.
type Action string

const (
	ActionUserRegistered      Action = "USER_REGISTERED"
	ActionUserLogin           Action = "USER_LOGIN"
	ActionUserLoginFailed     Action = "USER_LOGIN_FAILED"
	ActionProfileUpdated      Action = "PROFILE_UPDATED"
	ActionPaymentInitiated    Action = "PAYMENT_INITIATED"
	ActionPaymentSucceeded    Action = "PAYMENT_SUCCEEDED"
	ActionPaymentFailed       Action = "PAYMENT_FAILED"
	ActionPaymentReconFailed  Action = "PAYMENT_RECONCILIATION_FAILED"
	ActionSubscriptionChanged Action = "SUBSCRIPTION_TIER_CHANGED"
	ActionSubscriptionCancel  Action = "SUBSCRIPTION_CANCEL_REQUESTED"
)

// Target identifies the entity an entry is about. Both fields are set
// or the target is absent entirely.
type Target struct {
	Type string
	ID   string
}
