package shard

import "hash/fnv"

// For returns the shard index for an order ID, in [0, count).
// Stable and deterministic: the same order always lands on the same
// shard, so all line items of one order fold in a single worker's
// local accumulator during the parallel aggregation pass.
// Uses FNV-32a (stdlib, fast, well-distributed).
func For(orderID string, count int) int {
	if count <= 1 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(orderID))
	return int(h.Sum32()) % count
}
