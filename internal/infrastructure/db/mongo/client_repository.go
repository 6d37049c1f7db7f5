package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/n1fty/cms/internal/core/domain"
	"github.com/n1fty/cms/internal/core/ports"
)

type ClientRepository struct {
	col *mongo.Collection
	ids counters
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{
		col: db.Collection(collectionClients),
		ids: counters{col: db.Collection(collectionCounters)},
	}
}

// clientDoc mirrors domain.Client. active duplicates deleted_at == nil so the
// partial unique index can filter on it.
type clientDoc struct {
	ID         int64      `bson:"_id"`
	Name       string     `bson:"name"`
	Email      string     `bson:"email"`
	EmailLower string     `bson:"email_lower"`
	Phone      string     `bson:"phone"`
	Notes      string     `bson:"notes"`
	CreatedBy  *int64     `bson:"created_by,omitempty"`
	Active     bool       `bson:"active"`
	CreatedAt  time.Time  `bson:"created_at"`
	UpdatedAt  time.Time  `bson:"updated_at"`
	DeletedAt  *time.Time `bson:"deleted_at,omitempty"`
}

func (d clientDoc) toDomain() *domain.Client {
	c := &domain.Client{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Notes:     d.Notes,
		CreatedBy: d.CreatedBy,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if d.DeletedAt != nil {
		t := d.DeletedAt.UTC()
		c.DeletedAt = &t
	}
	return c
}

var activeFilter = bson.M{"active": true}

func byActiveID(id int64) bson.M {
	return bson.M{"_id": id, "active": true}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.ids.next(ctx, collectionClients)
	if err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(c.Email)
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := clientDoc{
		ID:         id,
		Name:       c.Name,
		Email:      email,
		EmailLower: email,
		Phone:      c.Phone,
		Notes:      c.Notes,
		CreatedBy:  c.CreatedBy,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert client: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id int64) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc clientDoc
	if err := r.col.FindOne(ctx, byActiveID(id)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) List(ctx context.Context, filter ports.ListClientsFilter) ([]*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, listFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer cur.Close(ctx)

	var docs []clientDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	out := make([]*domain.Client, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// listFilter matches active clients whose name or email contains the search
// term, case-insensitively. The term is quoted so it never acts as a regex.
func listFilter(filter ports.ListClientsFilter) bson.M {
	if filter.Search == "" {
		return activeFilter
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
	return bson.M{
		"active": true,
		"$or": bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
		},
	}
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	email := domain.NormalizeEmail(c.Email)
	var doc clientDoc
	err := r.col.FindOneAndUpdate(ctx, byActiveID(c.ID),
		bson.M{"$set": bson.M{
			"name":        c.Name,
			"email":       email,
			"email_lower": email,
			"phone":       c.Phone,
			"notes":       c.Notes,
			"updated_at":  time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrClientNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update client: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) SoftDelete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, byActiveID(id), bson.M{"$set": bson.M{
		"active":     false,
		"deleted_at": now,
		"updated_at": now,
	}})
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) CountActive(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, activeFilter)
	if err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return n, nil
}
