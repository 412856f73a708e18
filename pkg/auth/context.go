package auth

import "context"

type contextKey string

// ContextKeyCommitment is the context key for the authenticated reporter commitment.
const ContextKeyCommitment contextKey = "reporter_commitment"

// WithCommitment adds the reporter commitment to the context.
func WithCommitment(ctx context.Context, commitment string) context.Context {
	return context.WithValue(ctx, ContextKeyCommitment, commitment)
}

// CommitmentFromContext retrieves the reporter commitment from the context.
func CommitmentFromContext(ctx context.Context) (string, bool) {
	commitment, ok := ctx.Value(ContextKeyCommitment).(string)
	return commitment, ok
}
