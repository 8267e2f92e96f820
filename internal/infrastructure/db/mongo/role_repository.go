package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sign-identity/identity-api/internal/core/domain"
)

const collectionRoles = "roles"

// RoleRepository is the MongoDB-backed role store. Uniqueness and lookups
// run on the case-normalized name.
type RoleRepository struct {
	col *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{col: db.Collection(collectionRoles)}
}

type mongoRole struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	NormalizedName string             `bson:"normalized_name"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func (m *mongoRole) toDomain() *domain.Role {
	return &domain.Role{
		ID:             m.ID.Hex(),
		Name:           m.Name,
		NormalizedName: m.NormalizedName,
		CreatedAt:      m.CreatedAt,
	}
}

// Create inserts a new role. A duplicate normalized name surfaces as
// domain.ErrRoleExists via the unique index.
func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoRole{
		Name:           role.Name,
		NormalizedName: role.NormalizedName,
		CreatedAt:      role.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrRoleExists
		}
		return nil, fmt.Errorf("insert role: %w", err)
	}

	created := *role
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer cursor.Close(ctx)

	roles := []domain.Role{}
	for cursor.Next(ctx) {
		var m mongoRole
		if err := cursor.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode role: %w", err)
		}
		roles = append(roles, *m.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m mongoRole
	err := r.col.FindOne(ctx, bson.M{"normalized_name": domain.NormalizeRoleName(name)}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return m.toDomain(), nil
}

// Delete removes the role by name. The deleted-count distinguishes an
// actual delete from a concurrent one that got there first.
func (r *RoleRepository) Delete(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"normalized_name": domain.NormalizeRoleName(name)})
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}

// Rename updates name and normalized name in place, preserving the
// document's identity so the role's _id survives the rename.
func (r *RoleRepository) Rename(ctx context.Context, oldName, newName string) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":            newName,
		"normalized_name": domain.NormalizeRoleName(newName),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var m mongoRole
	err := r.col.FindOneAndUpdate(ctx, bson.M{"normalized_name": domain.NormalizeRoleName(oldName)}, update, opts).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrRoleExists
		}
		return nil, fmt.Errorf("rename role: %w", err)
	}
	return m.toDomain(), nil
}

// EnsureIndexes creates the unique normalized-name index backing duplicate
// detection.
func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "normalized_name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
