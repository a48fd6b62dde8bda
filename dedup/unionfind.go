package dedup

import "github.com/google/uuid"

// unionFind clusters job ids that appear in surviving similarity pairs.
// Path-halving find with union by size.
type unionFind struct {
	parent map[uuid.UUID]uuid.UUID
	size   map[uuid.UUID]int
}

func newUnionFind() *unionFind {
	return &unionFind{
		parent: map[uuid.UUID]uuid.UUID{},
		size:   map[uuid.UUID]int{},
	}
}

func (u *unionFind) add(id uuid.UUID) {
	if _, ok := u.parent[id]; !ok {
		u.parent[id] = id
		u.size[id] = 1
	}
}

func (u *unionFind) find(id uuid.UUID) uuid.UUID {
	u.add(id)
	for u.parent[id] != id {
		u.parent[id] = u.parent[u.parent[id]]
		id = u.parent[id]
	}
	return id
}

func (u *unionFind) union(a, b uuid.UUID) {
	rootA, rootB := u.find(a), u.find(b)
	if rootA == rootB {
		return
	}
	if u.size[rootA] < u.size[rootB] {
		rootA, rootB = rootB, rootA
	}
	u.parent[rootB] = rootA
	u.size[rootA] += u.size[rootB]
}

// components groups every added id by its root.
func (u *unionFind) components() map[uuid.UUID][]uuid.UUID {
	result := map[uuid.UUID][]uuid.UUID{}
	for id := range u.parent {
		root := u.find(id)
		result[root] = append(result[root], id)
	}
	return result
}
