package shared

import "context"

type subjectContextKey struct{}

// ContextWithSubject stores the acting user identifier in context.
func ContextWithSubject(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, subjectContextKey{}, userID)
}

// SubjectFromContext extracts the acting user identifier from context.
func SubjectFromContext(ctx context.Context) string {
	id, _ := ctx.Value(subjectContextKey{}).(string)
	return id
}
