// Package watch adapts Mongo change streams to the change-signal
// contract the live query layer consumes.
//
// A signal means only "the collection may have changed"; the consumer
// re-runs its query and replaces its snapshot wholesale. Signals are
// coalesced: if the consumer is still applying a snapshot when several
// writes land, it observes a single pending signal and picks up all of
// them on the next read.
package watch

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Collection emits change signals for one Mongo collection.
type Collection struct {
	c   *mongo.Collection
	log *zap.Logger
}

func New(c *mongo.Collection, logger *zap.Logger) *Collection {
	return &Collection{c: c, log: logger}
}

// Changes opens a change stream and returns a signal channel plus a
// cancel function. One initial signal is emitted immediately so the
// first snapshot loads without waiting for a write. The channel is
// closed when the stream ends or cancel is called.
func (w *Collection) Changes(ctx context.Context) (<-chan struct{}, func() error, error) {
	stream, err := w.c.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	ch := make(chan struct{}, 1)
	ch <- struct{}{}

	go func() {
		defer close(ch)
		for stream.Next(streamCtx) {
			select {
			case ch <- struct{}{}:
			default:
				// a signal is already pending; coalesce
			}
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			w.log.Error("change stream ended",
				zap.String("collection", w.c.Name()),
				zap.Error(err))
		}
		if err := stream.Close(context.Background()); err != nil {
			w.log.Warn("change stream close failed",
				zap.String("collection", w.c.Name()),
				zap.Error(err))
		}
	}()

	return ch, func() error {
		cancel()
		return nil
	}, nil
}
