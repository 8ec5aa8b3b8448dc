package constants

// API route paths, shared between the router and tests.
const (
	RouteHealth           = "/health"
	RouteAuthMe           = "/auth/me"
	RouteAuthVerify       = "/auth/verify"
	RouteReconcileGuest   = "/maintenance/reconcile-guest"
	RouteCreatePreference = "/mp/create-preference"
	RouteWebhook          = "/mp/webhook"
	RouteVerifyGrant      = "/mp/verify-grant"
	RouteDownloadLeads    = "/leads/downloads"
	RouteMetricsWebhooks  = "/metrics/webhooks"
)
