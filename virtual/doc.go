// Package virtual holds the lazy description of a dataset that is built before any
// materialization strategy is chosen.
//
// A virtual tree is made of Real and Text leaves bound to dataset variables, Tuples of
// nodes, and Fields mapping a sampled domain to a range Tuple. Nodes report their
// structural type without reading range values. Trees are cheap: the importer builds a
// fresh one for every strategy it attempts.
//
// Variables sharing a domain are folded into one Field by a Merger. Two policies are
// provided: DefaultConsolidator folds any fields with structurally equal domains,
// FlatConsolidator never folds flat fields so each stays independently materializable.
package virtual
