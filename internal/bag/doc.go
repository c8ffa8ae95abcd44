// Package bag implements multisets: collections that permit repeats and
// compare by content and multiplicity, not by insertion order.
//
// There is one concrete type per variant:
//
//	Frozen[T]      immutable, iterates in sorted order, usable as a key
//	Ordered[T]     immutable, iterates in insertion order, same key as Frozen
//	Bag[T]         mutable, sorted
//	OrderedBag[T]  mutable, insertion ordered (molecule pools)
//
// Immutable variants expose Key, a canonical string suitable for map keys,
// and Hash, a SHA-256 digest of the same content. Two bags built from the
// same elements in different orders always share a Key. Mutable variants
// have no Key; Freeze them first.
package bag
