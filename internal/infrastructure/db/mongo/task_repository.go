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

	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
)

const tasksCollection = "tasks"

type TaskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{coll: db.Collection(tasksCollection)}
}

type mongoTask struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	Priority    string             `bson:"priority"`
	DueDate     *time.Time         `bson:"due_date"`
	CompletedAt *time.Time         `bson:"completed_at"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

// Create inserts a new task document and returns it with the assigned id.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoTask{
		UserID:      t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	created := *t
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

// FindByID fetches a task by id, always filtered by owner. Missing and
// not-owned produce the same ErrTaskNotFound.
func (r *TaskRepository) FindByID(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}

	var mt mongoTask
	if err := r.coll.FindOne(ctx, ownerScopedID(oid, ownerID)).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return toDomainTask(mt), nil
}

// Update applies the changes in a single atomic document write scoped by
// id and owner, returning the updated task.
func (r *TaskRepository) Update(ctx context.Context, id, ownerID string, changes ports.TaskChanges) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}

	update := bson.M{"$set": buildUpdateSet(changes)}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mt mongoTask
	if err := r.coll.FindOneAndUpdate(ctx, ownerScopedID(oid, ownerID), update, opts).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return toDomainTask(mt), nil
}

// Delete removes a task scoped by id and owner.
func (r *TaskRepository) Delete(ctx context.Context, id, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTaskNotFound
	}

	res, err := r.coll.DeleteOne(ctx, ownerScopedID(oid, ownerID))
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// List returns a page of tasks matching filter plus the total match count.
func (r *TaskRepository) List(ctx context.Context, filter ports.ListTasksFilter) ([]*domain.Task, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := buildListFilter(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	opts := options.Find().
		SetSort(buildListSort(filter.SortBy, filter.SortDir)).
		SetSkip(int64(filter.Page-1) * int64(filter.PerPage)).
		SetLimit(int64(filter.PerPage))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := make([]*domain.Task, 0, filter.PerPage)
	for cursor.Next(ctx) {
		var mt mongoTask
		if err := cursor.Decode(&mt); err != nil {
			return nil, 0, fmt.Errorf("decode task: %w", err)
		}
		tasks = append(tasks, toDomainTask(mt))
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, total, nil
}

// EnsureIndexes creates the indexes the list queries and sorts rely on.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "due_date", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// ownerScopedID is the filter used by every by-id operation. The owner
// condition is part of the query itself so no code path can tell "doesn't
// exist" apart from "exists but not mine".
func ownerScopedID(oid primitive.ObjectID, ownerID string) bson.D {
	return bson.D{
		{Key: "_id", Value: oid},
		{Key: "user_id", Value: ownerID},
	}
}

// buildListFilter composes the list query. The owner condition always comes
// first; the remaining filters are ANDed onto it.
func buildListFilter(f ports.ListTasksFilter) bson.D {
	query := bson.D{{Key: "user_id", Value: f.OwnerID}}

	if f.Status != "" {
		query = append(query, bson.E{Key: "status", Value: f.Status})
	}
	if f.Priority != "" {
		query = append(query, bson.E{Key: "priority", Value: f.Priority})
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query = append(query, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: pattern}},
			bson.D{{Key: "description", Value: pattern}},
		}})
	}
	return query
}

// sortableFields whitelists the task fields a caller may sort by. Unknown
// names fall back to created_at so the order stays deterministic.
var sortableFields = map[string]string{
	"_id":          "_id",
	"title":        "title",
	"description":  "description",
	"status":       "status",
	"priority":     "priority",
	"due_date":     "due_date",
	"completed_at": "completed_at",
	"created_at":   "created_at",
	"updated_at":   "updated_at",
}

func buildListSort(sortBy, sortDir string) bson.D {
	field, ok := sortableFields[sortBy]
	if !ok {
		field = "created_at"
	}
	dir := -1
	if sortDir == "asc" {
		dir = 1
	}
	return bson.D{{Key: field, Value: dir}}
}

// buildUpdateSet translates TaskChanges into a $set document. Clear flags
// write explicit nulls; updated_at is always refreshed.
func buildUpdateSet(changes ports.TaskChanges) bson.M {
	set := bson.M{"updated_at": time.Now().UTC()}

	if changes.Title != nil {
		set["title"] = *changes.Title
	}
	if changes.Description != nil {
		set["description"] = *changes.Description
	}
	if changes.Status != nil {
		set["status"] = *changes.Status
	}
	if changes.Priority != nil {
		set["priority"] = *changes.Priority
	}
	if changes.DueDate != nil {
		set["due_date"] = *changes.DueDate
	}
	if changes.ClearDueDate {
		set["due_date"] = nil
	}
	if changes.CompletedAt != nil {
		set["completed_at"] = *changes.CompletedAt
	}
	if changes.ClearCompletedAt {
		set["completed_at"] = nil
	}
	return set
}

func toDomainTask(mt mongoTask) *domain.Task {
	t := &domain.Task{
		ID:          mt.ID.Hex(),
		OwnerID:     mt.UserID,
		Title:       mt.Title,
		Description: mt.Description,
		Status:      domain.TaskStatus(mt.Status),
		Priority:    domain.TaskPriority(mt.Priority),
		CreatedAt:   mt.CreatedAt.UTC(),
		UpdatedAt:   mt.UpdatedAt.UTC(),
	}
	if mt.DueDate != nil {
		due := mt.DueDate.UTC()
		t.DueDate = &due
	}
	if mt.CompletedAt != nil {
		done := mt.CompletedAt.UTC()
		t.CompletedAt = &done
	}
	return t
}
