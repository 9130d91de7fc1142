package repository

// storeConfig collects construction parameters for the ShardStore.
type storeConfig struct {
	shardCount int
	capacity   int
}

// Option applies a configuration option to the ShardStore.
type Option func(*storeConfig)

// WithShardCount sets the number of shards. Values below one collapse to a
// single shard.
func WithShardCount(n int) Option {
	return func(c *storeConfig) {
		c.shardCount = n
	}
}

// WithCapacity bounds the total number of retained reports. The bound is
// split evenly across shards; a non-positive value disables eviction.
func WithCapacity(n int) Option {
	return func(c *storeConfig) {
		c.capacity = n
	}
}
