// Package chem holds the reaction-network data model.
//
// A Network maps reactions, pairs of reactant and product multisets, to
// strictly positive rates. Networks are immutable: they are built once from
// a rate table, from .chem text, or by a generator, and never change after.
//
// The .chem text format holds one reaction per line:
//
//	A + B -2.0> B + C
//	C -> A
//
// Species are separated by '+', an omitted rate reads as 1, blank lines and
// lines starting with '#' are ignored. Rendering sorts species within each
// side and sorts lines, so equal networks always render identically.
package chem
