package gpucache

type constError string

func (e constError) Error() string { return string(e) }

// ErrAlreadyTracked is the contract-violation fault for inserting a
// resource the cache already tracks.
const ErrAlreadyTracked = constError("resource already tracked by cache")

// ErrNotPurgeableAtInsert is the contract-violation fault for inserting a
// resource that reports itself purgeable before the cache has ever seen
// it (spec.md's insert precondition: "not purgeable").
const ErrNotPurgeableAtInsert = constError("resource must not be purgeable at insert")

// ErrNotTracked is the contract-violation fault for passing a resource
// the cache does not track to an operation that requires it to.
const ErrNotTracked = constError("resource is not tracked by this cache")
