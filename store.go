package glass

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const DefaultPageSize = 8

type Options struct {
	// Codec serializes complex fields. Defaults to DefaultCodec.
	Codec Codec

	// PageSize is the number of entries per Page. Defaults to DefaultPageSize.
	PageSize int

	Logger  *zap.Logger
	Verbose bool

	Metrics MetricsCollector

	// IdempotentInsert makes Insert under an id that is already indexed keep
	// the existing rank instead of moving the id to the end.
	IdempotentInsert bool
}

// Store keeps records of any number of record types in an Engine. It holds
// no state besides its configuration; every call goes to the engine.
type Store struct {
	eng      Engine
	codec    Codec
	pageSize int
	logger   *zap.Logger
	sugar    *zap.SugaredLogger
	verbose  bool
	metrics  MetricsCollector

	idempotentInsert bool
}

func New(eng Engine, opt Options) *Store {
	s := &Store{
		eng:              eng,
		codec:            opt.Codec,
		pageSize:         opt.PageSize,
		logger:           opt.Logger,
		verbose:          opt.Verbose,
		metrics:          opt.Metrics,
		idempotentInsert: opt.IdempotentInsert,
	}
	if s.codec == nil {
		s.codec = DefaultCodec
	}
	if s.pageSize <= 0 {
		s.pageSize = DefaultPageSize
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = NoopMetrics{}
	}
	s.sugar = s.logger.Sugar()
	return s
}

func (s *Store) Engine() Engine { return s.eng }

func (s *Store) Codec() Codec { return s.codec }

func (s *Store) PageSize() int { return s.pageSize }

func (s *Store) Logger() *zap.Logger { return s.logger }

func (s *Store) Close() error {
	return s.eng.Close()
}

// IndexKey is the key of the ordering index of record type typ.
func IndexKey(typ string) string {
	return typ + "-index"
}

// BagKey is the key of the field-bag of one record.
func BagKey(typ string, id ID) string {
	return typ + ":" + id.String()
}

func checkFieldNames(typ string, set []FieldValue, unset []string) error {
	for _, f := range set {
		if f.Name == "" {
			return fmt.Errorf("glass: %s: %w", typ, ErrEmptyFieldName)
		}
	}
	for _, name := range unset {
		if name == "" {
			return fmt.Errorf("glass: %s: %w", typ, ErrEmptyFieldName)
		}
	}
	return nil
}

func (s *Store) exec(ctx context.Context, op, typ string, cmds []Cmd) ([]Reply, error) {
	start := time.Now()
	replies, err := s.eng.Exec(ctx, cmds)
	if err == nil && len(replies) != len(cmds) {
		err = fmt.Errorf("got %d replies to %d commands", len(replies), len(cmds))
	}
	s.metrics.ObserveBatch(op, typ, len(cmds), time.Since(start), err)
	if err != nil {
		return nil, backendErr(op, typ, err)
	}
	return replies, nil
}
