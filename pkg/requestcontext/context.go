// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. This keeps services free of net/http dependencies:
// middleware sets values, services read them.
package requestcontext

import (
	"context"
	"time"
)

type (
	actorIDKey           struct{}
	usernameKey          struct{}
	roleKey              struct{}
	departmentKey        struct{}
	deviceFingerprintKey struct{}
	clientIPKey          struct{}
	userAgentKey         struct{}
	requestIDKey         struct{}
	requestTimeKey       struct{}
)

// Exported context keys for direct use in tests.
var (
	ContextKeyActorID          = actorIDKey{}
	ContextKeyUsername         = usernameKey{}
	ContextKeyRole             = roleKey{}
	ContextKeyDepartment       = departmentKey{}
	ContextKeyDeviceFingerprint = deviceFingerprintKey{}
	ContextKeyClientIP         = clientIPKey{}
	ContextKeyUserAgent        = userAgentKey{}
	ContextKeyRequestID        = requestIDKey{}
	ContextKeyRequestTime      = requestTimeKey{}
)

// ActorID retrieves the authenticated actor's id from the context.
func ActorID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyActorID).(string); ok {
		return v
	}
	return ""
}

// WithActorID injects the authenticated actor's id into the context.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ContextKeyActorID, actorID)
}

// Username retrieves the authenticated actor's username from the context.
func Username(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyUsername).(string); ok {
		return v
	}
	return ""
}

// WithUsername injects the authenticated actor's username into the context.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ContextKeyUsername, username)
}

// Role retrieves the authenticated actor's role from the context.
func Role(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyRole).(string); ok {
		return v
	}
	return ""
}

// WithRole injects the authenticated actor's role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ContextKeyRole, role)
}

// Department retrieves the authenticated actor's department from the context.
func Department(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyDepartment).(string); ok {
		return v
	}
	return ""
}

// WithDepartment injects the authenticated actor's department into the context.
func WithDepartment(ctx context.Context, department string) context.Context {
	return context.WithValue(ctx, ContextKeyDepartment, department)
}

// DeviceFingerprint retrieves the pre-computed device fingerprint from the context.
func DeviceFingerprint(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyDeviceFingerprint).(string); ok {
		return v
	}
	return ""
}

// WithDeviceFingerprint injects a device fingerprint into a context.
func WithDeviceFingerprint(ctx context.Context, fingerprint string) context.Context {
	return context.WithValue(ctx, ContextKeyDeviceFingerprint, fingerprint)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return v
	}
	return ""
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return v
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	ctx = context.WithValue(ctx, ContextKeyUserAgent, userAgent)
	return ctx
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context, falling back to
// time.Now() for non-HTTP contexts (workers, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. The requesttime
// middleware uses it to fix one timestamp per HTTP request.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
