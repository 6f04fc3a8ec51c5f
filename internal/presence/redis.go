package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matheus3301/pairchat/internal/bus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix = "presence"
	channel   = "presence"
)

// RedisStore keeps presence in Redis hashes (presence:{id}) and fans changes
// out over a Redis channel so every daemon sharing the server sees them.
type RedisStore struct {
	cli    *redis.Client
	bus    *bus.Bus
	logger *zap.Logger
}

type redisStatus struct {
	State      string `redis:"state"`
	LastActive int64  `redis:"last_active"`
}

// ConnectRedis connects to the Redis server at url (redis://...) and pings it.
func ConnectRedis(ctx context.Context, url string, b *bus.Bus, logger *zap.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	cli := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := cli.Ping(pingCtx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{cli: cli, bus: b, logger: logger}, nil
}

func key(participant string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, participant)
}

func (r *RedisStore) Set(ctx context.Context, s Status) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal presence: %w", err)
	}
	_, err = r.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key(s.ParticipantID), redisStatus{
			State:      string(s.State),
			LastActive: s.LastActive.UnixMilli(),
		})
		pipe.Publish(ctx, channel, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set presence: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, participant string) (Status, error) {
	var rs redisStatus
	if err := r.cli.HGetAll(ctx, key(participant)).Scan(&rs); err != nil {
		return Status{}, fmt.Errorf("redis get presence: %w", err)
	}
	return rs.status(participant), nil
}

func (r *RedisStore) GetMany(ctx context.Context, participants []string) (map[string]Status, error) {
	cmds := make(map[string]*redis.MapStringStringCmd, len(participants))
	_, err := r.cli.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range participants {
			cmds[p] = pipe.HGetAll(ctx, key(p))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis get presence: %w", err)
	}

	out := make(map[string]Status, len(participants))
	for p, cmd := range cmds {
		var rs redisStatus
		if err := cmd.Scan(&rs); err != nil {
			return nil, fmt.Errorf("scan presence %q: %w", p, err)
		}
		out[p] = rs.status(p)
	}
	return out, nil
}

// Run relays presence changes from the Redis channel onto the local bus
// until ctx is cancelled.
func (r *RedisStore) Run(ctx context.Context) {
	sub := r.cli.Subscribe(ctx, channel)
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var s Status
			if err := json.Unmarshal([]byte(msg.Payload), &s); err != nil {
				r.logger.Warn("malformed presence payload", zap.Error(err))
				continue
			}
			announce(r.bus, s)
		case <-ctx.Done():
			return
		}
	}
}

func (r *RedisStore) Close() error {
	return r.cli.Close()
}

func (rs redisStatus) status(participant string) Status {
	if rs.State == "" {
		return unknown(participant)
	}
	s := Status{ParticipantID: participant, State: State(rs.State)}
	if rs.LastActive > 0 {
		s.LastActive = time.UnixMilli(rs.LastActive).UTC()
	}
	return s
}
