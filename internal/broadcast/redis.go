package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// envelope is the on-wire form: the sync message plus an origin tag so
// an instance can ignore its own publishes. Receivers still only act
// on Type and re-read the slot.
type envelope struct {
	Type   string `json:"type"`
	Origin string `json:"origin,omitempty"`
}

// RedisChannel relays sync messages through a Redis pub/sub topic so
// store instances in different processes converge on the same slot.
type RedisChannel struct {
	client *redis.Client
	pubsub *redis.PubSub
	topic  string
	origin string
	log    *zap.Logger

	mu     sync.Mutex
	subs   map[int]func(Message)
	nextID int
	closed bool

	done chan struct{}
}

// NewRedisChannel connects to Redis and starts listening on topic.
// Callers should treat a returned error as "channel unavailable" and
// run without cross-process sync.
func NewRedisChannel(ctx context.Context, addr, topic string, log *zap.Logger) (*RedisChannel, error) {
	if log == nil {
		log = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	pubsub := client.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(pingCtx); err != nil {
		_ = pubsub.Close()
		_ = client.Close()
		return nil, fmt.Errorf("subscribe %q: %w", topic, err)
	}

	c := &RedisChannel{
		client: client,
		pubsub: pubsub,
		topic:  topic,
		origin: uuid.NewString(),
		log:    log,
		subs:   make(map[int]func(Message)),
		done:   make(chan struct{}),
	}
	go c.receive()
	return c, nil
}

func (c *RedisChannel) receive() {
	defer close(c.done)
	for msg := range c.pubsub.Channel() {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			c.log.Warn("drop malformed sync message", zap.Error(err))
			continue
		}
		if env.Origin == c.origin {
			continue
		}

		c.mu.Lock()
		fns := make([]func(Message), 0, len(c.subs))
		for _, fn := range c.subs {
			fns = append(fns, fn)
		}
		c.mu.Unlock()

		for _, fn := range fns {
			fn(Message{Type: env.Type})
		}
	}
}

func (c *RedisChannel) Publish(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(envelope{Type: msg.Type, Origin: c.origin})
	if err != nil {
		return fmt.Errorf("encode sync message: %w", err)
	}
	if err := c.client.Publish(ctx, c.topic, payload).Err(); err != nil {
		return fmt.Errorf("publish %q: %w", c.topic, err)
	}
	return nil
}

func (c *RedisChannel) Subscribe(fn func(Message)) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("channel closed")
	}
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}, nil
}

func (c *RedisChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.pubsub.Close()
	<-c.done
	if cerr := c.client.Close(); err == nil {
		err = cerr
	}
	return err
}
