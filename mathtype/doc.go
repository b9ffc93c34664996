// Package mathtype is the structural type system of imported data.
//
// A dataset imports as a tree of types: RealType for numeric quantities, TextType
// for strings, TupleType for heterogeneous records, RealTupleType for numeric
// vectors, and FunctionType for a mapping from a sampled domain to a range.
// Domains are described by Set, a product of sampled axes.
//
// All comparisons are structural. Two independently built types or sets describing
// the same thing are Equal.
package mathtype
