package store

import (
	"context"
	"encoding/json"
	"fmt"
)

type Action string

const (
	ActionInsertOne  Action = "insertOne"
	ActionInsertMany Action = "insertMany"
	ActionFind       Action = "find"
	ActionFindOne    Action = "findOne"
	ActionUpdateOne  Action = "updateOne"
	ActionUpdateMany Action = "updateMany"
	ActionDeleteOne  Action = "deleteOne"
	ActionDeleteMany Action = "deleteMany"
	ActionAggregate  Action = "aggregate"
	ActionCount      Action = "count"
)

// Command is one generic gateway call as sent by the admin API.
type Command struct {
	Action     Action          `json:"action"`
	Collection string          `json:"collection"`
	Data       json.RawMessage `json:"data,omitempty"`
	Filter     Filter          `json:"filter,omitempty"`
	Pipeline   Pipeline        `json:"pipeline,omitempty"`
	Sort       map[string]any  `json:"sort,omitempty"`
	Limit      int             `json:"limit,omitempty"`
	Skip       int             `json:"skip,omitempty"`
	Upsert     bool            `json:"upsert,omitempty"`
}

// Execute runs cmd against s. The result shape depends on the action:
// an id, a list of ids, documents, a document, an UpdateResult or a count.
func Execute(ctx context.Context, s Store, cmd Command) (any, error) {
	c, err := ParseCollection(cmd.Collection)
	if err != nil {
		return nil, err
	}
	filter := cmd.Filter
	if filter == nil {
		filter = Filter{}
	}

	switch cmd.Action {
	case ActionInsertOne:
		var doc Document
		if err := decodeData(cmd.Data, &doc); err != nil {
			return nil, err
		}
		id, err := s.InsertOne(ctx, c, doc)
		if err != nil {
			return nil, err
		}
		return map[string]string{"insertedId": id}, nil

	case ActionInsertMany:
		var docs []Document
		if err := decodeData(cmd.Data, &docs); err != nil {
			return nil, err
		}
		ids, err := s.InsertMany(ctx, c, docs)
		if err != nil {
			return nil, err
		}
		return map[string][]string{"insertedIds": ids}, nil

	case ActionFind:
		opts := FindOptions{Limit: cmd.Limit, Skip: cmd.Skip}
		if len(cmd.Sort) > 0 {
			if opts.Sort, err = ParseSort(cmd.Sort); err != nil {
				return nil, err
			}
		}
		return s.Find(ctx, c, filter, opts)

	case ActionFindOne:
		return s.FindOne(ctx, c, filter)

	case ActionUpdateOne, ActionUpdateMany:
		if len(cmd.Filter) == 0 {
			return nil, validationErrorf("%s requires a filter", cmd.Action)
		}
		var set Document
		if err := decodeData(cmd.Data, &set); err != nil {
			return nil, err
		}
		if cmd.Action == ActionUpdateOne {
			return s.UpdateOne(ctx, c, filter, set, UpdateOptions{Upsert: cmd.Upsert})
		}
		return s.UpdateMany(ctx, c, filter, set)

	case ActionDeleteOne, ActionDeleteMany:
		if len(cmd.Filter) == 0 {
			return nil, validationErrorf("%s requires a filter", cmd.Action)
		}
		var n int64
		if cmd.Action == ActionDeleteOne {
			n, err = s.DeleteOne(ctx, c, filter)
		} else {
			n, err = s.DeleteMany(ctx, c, filter)
		}
		if err != nil {
			return nil, err
		}
		return map[string]int64{"deletedCount": n}, nil

	case ActionAggregate:
		return s.Aggregate(ctx, c, cmd.Pipeline)

	case ActionCount:
		n, err := s.Count(ctx, c, filter)
		if err != nil {
			return nil, err
		}
		return map[string]int64{"count": n}, nil

	default:
		return nil, validationErrorf("unknown action %q", cmd.Action)
	}
}

func decodeData(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return validationErrorf("data is required")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &ValidationError{Reason: fmt.Sprintf("data: %v", err)}
	}
	return nil
}
