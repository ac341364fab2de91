package generator

import (
	"github.com/brianvoe/gofakeit/v7"
)

// NewFaker returns a faker seeded with seed. A zero seed draws a random one.
func NewFaker(seed uint64) *gofakeit.Faker {
	return gofakeit.New(seed)
}

// ShardFaker returns the faker for shard i of a run seeded with seed. Shards of
// a seeded run are reproducible independently of scheduling; an unseeded run
// gives every shard a random seed.
func ShardFaker(seed uint64, shard int) *gofakeit.Faker {
	if seed == 0 {
		return gofakeit.New(0)
	}
	s := mix(seed + uint64(shard)*0x9e3779b97f4a7c15)
	if s == 0 {
		s = 1
	}
	return gofakeit.New(s)
}

// mix is the splitmix64 finalizer.
func mix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
