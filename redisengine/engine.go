// Package redisengine runs glass command batches against Redis.
package redisengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/andreyvit/glass"
)

// Engine submits each batch as a MULTI/EXEC transaction. It is safe for
// concurrent use; go-redis hands every call its own pooled connection.
type Engine struct {
	rdb redis.UniversalClient
}

// New wraps an existing client. Close closes it.
func New(rdb redis.UniversalClient) *Engine {
	return &Engine{rdb: rdb}
}

// Dial connects to the server described by cfg and checks it answers PING.
func Dial(ctx context.Context, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rdb := redis.NewClient(cfg.Options())
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, &glass.BackendError{Op: "dial " + cfg.String(), Err: err}
	}
	return New(rdb), nil
}

func (e *Engine) Client() redis.UniversalClient { return e.rdb }

func (e *Engine) Close() error {
	return e.rdb.Close()
}

func (e *Engine) Exec(ctx context.Context, cmds []glass.Cmd) ([]glass.Reply, error) {
	if len(cmds) == 0 {
		return nil, nil
	}
	pipe := e.rdb.TxPipeline()
	results := make([]redis.Cmder, len(cmds))
	for i, c := range cmds {
		switch c.Kind {
		case glass.CmdZAdd:
			results[i] = pipe.ZAdd(ctx, c.Key, redis.Z{Score: c.Score, Member: c.Member})
		case glass.CmdZRem:
			results[i] = pipe.ZRem(ctx, c.Key, c.Member)
		case glass.CmdZCard:
			results[i] = pipe.ZCard(ctx, c.Key)
		case glass.CmdZRange:
			results[i] = pipe.ZRange(ctx, c.Key, c.Start, c.Stop)
		case glass.CmdZScore:
			results[i] = pipe.ZScore(ctx, c.Key, c.Member)
		case glass.CmdZIncrBy:
			results[i] = pipe.ZIncrBy(ctx, c.Key, c.Score, c.Member)
		case glass.CmdHSet:
			results[i] = pipe.HSet(ctx, c.Key, c.Member, c.Value)
		case glass.CmdHGet:
			results[i] = pipe.HGet(ctx, c.Key, c.Member)
		case glass.CmdHDel:
			results[i] = pipe.HDel(ctx, c.Key, c.Member)
		case glass.CmdHKeys:
			results[i] = pipe.HKeys(ctx, c.Key)
		case glass.CmdHGetAll:
			results[i] = pipe.HGetAll(ctx, c.Key)
		default:
			pipe.Discard()
			return nil, fmt.Errorf("unsupported command %v", c.Kind)
		}
	}

	// Exec reports the first failed command; a nil reply counts as one.
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	replies := make([]glass.Reply, len(cmds))
	for i, res := range results {
		if err := res.Err(); err != nil {
			if errors.Is(err, redis.Nil) {
				replies[i].Nil = true
				continue
			}
			return nil, fmt.Errorf("%v: %w", cmds[i], err)
		}
		switch res := res.(type) {
		case *redis.IntCmd:
			replies[i].Int = res.Val()
		case *redis.FloatCmd:
			replies[i].Score = res.Val()
		case *redis.StringCmd:
			replies[i].Str = res.Val()
		case *redis.StringSliceCmd:
			replies[i].Strs = res.Val()
		case *redis.MapStringStringCmd:
			replies[i].Fields = res.Val()
		default:
			return nil, fmt.Errorf("%v: unexpected reply type %T", cmds[i], res)
		}
	}
	return replies, nil
}
