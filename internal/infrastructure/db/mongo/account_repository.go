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

const collectionAccounts = "accounts"

// AccountRepository is the MongoDB-backed identity store for accounts.
//
// The soft-delete invariant is enforced here and only here: every read
// filters on status, so a deleted account is invisible to lookups, listing,
// and login alike while its document stays in the collection.
type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionAccounts)}
}

type mongoAccount struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	Username     string             `bson:"username"`
	FirstName    string             `bson:"first_name"`
	LastName     string             `bson:"last_name"`
	Age          int                `bson:"age"`
	PasswordHash string             `bson:"password_hash"`
	Roles        []string           `bson:"roles"`
	Status       string             `bson:"status"`
	CreatedAt    time.Time          `bson:"created_at"`
	ModifiedAt   time.Time          `bson:"modified_at"`
	DeletedAt    *time.Time         `bson:"deleted_at,omitempty"`
}

func (m *mongoAccount) toDomain() *domain.Account {
	roles := m.Roles
	if roles == nil {
		roles = []string{}
	}
	return &domain.Account{
		ID:           m.ID.Hex(),
		Email:        m.Email,
		Username:     m.Username,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Age:          m.Age,
		PasswordHash: m.PasswordHash,
		Roles:        roles,
		Status:       domain.AccountStatus(m.Status),
		CreatedAt:    m.CreatedAt,
		ModifiedAt:   m.ModifiedAt,
		DeletedAt:    m.DeletedAt,
	}
}

// activeFilter returns the given filter narrowed to non-deleted accounts.
func activeFilter(filter bson.M) bson.M {
	filter["status"] = string(domain.StatusActive)
	return filter
}

// Create inserts a new account document. A duplicate email surfaces as
// domain.ErrAccountExists via the unique index.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoAccount{
		Email:        account.Email,
		Username:     account.Username,
		FirstName:    account.FirstName,
		LastName:     account.LastName,
		Age:          account.Age,
		PasswordHash: account.PasswordHash,
		Roles:        []string{},
		Status:       string(account.Status),
		CreatedAt:    account.CreatedAt,
		ModifiedAt:   account.ModifiedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	created := *account
	created.Roles = []string{}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m mongoAccount
	err := r.col.FindOne(ctx, activeFilter(bson.M{"email": email})).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return m.toDomain(), nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m mongoAccount
	err = r.col.FindOne(ctx, activeFilter(bson.M{"_id": oid})).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return m.toDomain(), nil
}

// ListActive returns non-deleted accounts in insertion order.
func (r *AccountRepository) ListActive(ctx context.Context) ([]domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, activeFilter(bson.M{}), opts)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cursor.Close(ctx)

	accounts := []domain.Account{}
	for cursor.Next(ctx) {
		var m mongoAccount
		if err := cursor.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		accounts = append(accounts, *m.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// SoftDelete atomically flags an active account deleted. The single
// FindOneAndUpdate collapses the lookup-then-write race: a concurrent
// delete loses and reports not-found.
func (r *AccountRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":      string(domain.StatusDeleted),
		"deleted_at":  deletedAt,
		"modified_at": deletedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var m mongoAccount
	err = r.col.FindOneAndUpdate(ctx, activeFilter(bson.M{"_id": oid}), update, opts).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("soft-delete account: %w", err)
	}
	return m.toDomain(), nil
}

// UpdateProfile atomically overwrites the mutable profile fields.
func (r *AccountRepository) UpdateProfile(ctx context.Context, id, firstName, lastName string, age int, modifiedAt time.Time) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"first_name":  firstName,
		"last_name":   lastName,
		"age":         age,
		"modified_at": modifiedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var m mongoAccount
	err = r.col.FindOneAndUpdate(ctx, activeFilter(bson.M{"_id": oid}), update, opts).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return m.toDomain(), nil
}

// AssignRole adds roleName to the account's role set ($addToSet keeps it
// duplicate-free).
func (r *AccountRepository) AssignRole(ctx context.Context, id, roleName string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, activeFilter(bson.M{"_id": oid}), bson.M{"$addToSet": bson.M{"roles": roleName}})
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// RenameRole rewrites oldName to newName inside every account's role array.
// Matching is case-normalized so the cascade follows the role store's
// uniqueness rule.
func (r *AccountRepository) RenameRole(ctx context.Context, oldName, newName string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	normalizedOld := domain.NormalizeRoleName(oldName)
	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"roles": bson.M{"$map": bson.M{
				"input": "$roles",
				"in": bson.M{"$cond": bson.A{
					bson.M{"$eq": bson.A{bson.M{"$toUpper": "$$this"}, normalizedOld}},
					newName,
					"$$this",
				}},
			}},
		}},
	}

	res, err := r.col.UpdateMany(ctx, bson.M{"roles": bson.M{"$exists": true}}, pipeline)
	if err != nil {
		return 0, fmt.Errorf("rename role memberships: %w", err)
	}
	return res.ModifiedCount, nil
}

// EnsureIndexes creates the unique email index backing duplicate-account
// detection.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
