package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erazemk/recyclehub/internal/auth"
)

// RevokeToken upserts the JTI; the TTL index removes it after expiresAt.
func (s *Store) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := s.tokens.UpdateOne(ctx,
		bson.M{"_id": jti},
		bson.M{"$setOnInsert": bson.M{"expires_at": expiresAt.UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

// IsTokenRevoked checks if a token's JTI has been revoked. Expired entries
// the TTL monitor has not yet removed still count as revoked.
func (s *Store) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.tokens.CountDocuments(ctx, bson.M{"_id": jti}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return n > 0, nil
}

// JWTSecret returns the stored signing key, creating it on first use. The
// upsert with $setOnInsert makes concurrent first calls agree.
func (s *Store) JWTSecret(ctx context.Context) (string, error) {
	candidate, err := auth.GenerateSecret()
	if err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}

	var doc struct {
		Value string `bson:"value"`
	}
	err = s.settings.FindOneAndUpdate(ctx,
		bson.M{"_id": "jwt_secret"},
		bson.M{"$setOnInsert": bson.M{"value": candidate}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// Lost an upsert race; the winner's value is in place now.
		err = s.settings.FindOne(ctx, bson.M{"_id": "jwt_secret"}).Decode(&doc)
	}
	if err != nil {
		return "", fmt.Errorf("loading jwt_secret: %w", err)
	}
	return doc.Value, nil
}
